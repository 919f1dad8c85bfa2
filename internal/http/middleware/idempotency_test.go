package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-diet-backend/internal/domain"
)

func TestHelpers_GetIdempotencyKey_IsReplay_UserIDFromCtx(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key when not set")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false by default")
	}

	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected IsReplay=true")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false for non-bool")
	}

	if got := userIDFromCtx(c); got != "" {
		t.Fatalf("anonymous request must have no user, got %q", got)
	}
	SetPrincipal(c, domain.Principal{ID: "u1"})
	if got := userIDFromCtx(c); got != "u1" {
		t.Fatalf("userIDFromCtx = %q", got)
	}
}

// idemRouter installs a fake auth step so the validator sees a principal.
func idemRouter(opts IdempotencyOptions, lookup IdempotencyLookup, user string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user != "" {
			SetPrincipal(c, domain.Principal{ID: user})
		}
		c.Next()
	})
	r.Use(IdempotencyValidator(opts, lookup))
	r.POST("/diets", func(c *gin.Context) {
		k, _ := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{"key": k, "replay": IsReplay(c), "bypass": IsRateBypass(c)})
	})
	return r
}

func postDiet(r *gin.Engine, key string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, "/diets", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestIdempotencyValidator_NoHeader_NoLookup(t *testing.T) {
	called := false
	r := idemRouter(IdempotencyOptions{}, func(context.Context, string, string) (bool, error) {
		called = true
		return true, nil
	}, "u1")

	w, body := postDiet(r, "")
	if w.Code != http.StatusOK || body["key"] != "" || body["replay"] != false {
		t.Fatalf("unexpected response %d %v", w.Code, body)
	}
	if called {
		t.Fatalf("lookup must not run without a key")
	}
}

func TestIdempotencyValidator_InvalidKeys(t *testing.T) {
	r := idemRouter(IdempotencyOptions{MaxLen: 8}, nil, "u1")

	for _, key := range []string{strings.Repeat("a", 9), "has space", "semi;colon"} {
		w, body := postDiet(r, key)
		if w.Code != http.StatusBadRequest || body["code"] != "bad_idempotency_key" {
			t.Fatalf("key %q: got %d %v", key, w.Code, body)
		}
	}

	custom := idemRouter(IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, nil, "u1")
	if w, _ := postDiet(custom, "abc"); w.Code != http.StatusBadRequest {
		t.Fatalf("custom pattern not enforced: %d", w.Code)
	}
	if w, _ := postDiet(custom, "123"); w.Code != http.StatusOK {
		t.Fatalf("custom pattern rejected valid key: %d", w.Code)
	}
}

func TestIdempotencyValidator_LookupMissHitAndError(t *testing.T) {
	var gotUser, gotKey string
	hit := idemRouter(IdempotencyOptions{}, func(_ context.Context, userID, key string) (bool, error) {
		gotUser, gotKey = userID, key
		return true, nil
	}, "u1")
	_, body := postDiet(hit, "k-1")
	if gotUser != "u1" || gotKey != "k-1" {
		t.Fatalf("lookup got (%q,%q)", gotUser, gotKey)
	}
	if body["key"] != "k-1" || body["replay"] != true || body["bypass"] != true {
		t.Fatalf("expected replay flags: %v", body)
	}

	miss := idemRouter(IdempotencyOptions{}, func(context.Context, string, string) (bool, error) {
		return false, nil
	}, "u1")
	if _, body := postDiet(miss, "k-2"); body["replay"] != false || body["key"] != "k-2" {
		t.Fatalf("miss should keep key without replay: %v", body)
	}

	broken := idemRouter(IdempotencyOptions{}, func(context.Context, string, string) (bool, error) {
		return true, errors.New("store down")
	}, "u1")
	if w, body := postDiet(broken, "k-3"); w.Code != http.StatusOK || body["replay"] != false {
		t.Fatalf("lookup errors must not block or replay: %d %v", w.Code, body)
	}
}

func TestIdempotencyValidator_AnonymousSkipsLookup(t *testing.T) {
	called := false
	r := idemRouter(IdempotencyOptions{}, func(context.Context, string, string) (bool, error) {
		called = true
		return true, nil
	}, "")
	if _, body := postDiet(r, "k-1"); body["replay"] != false {
		t.Fatalf("anonymous request must not replay: %v", body)
	}
	if called {
		t.Fatalf("lookup must not run without a user")
	}
}

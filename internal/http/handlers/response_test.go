package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-diet-backend/internal/services"
)

// serveError runs err through writeServiceError and returns the response
// together with everything the request-scoped logger wrote.
func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-err")
		c.Set("logger", &logger)
		c.Next()
	})
	r.GET("/diets/:id", func(c *gin.Context) { writeServiceError(c, err) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diets/d1", nil))
	return w, buf.String()
}

func TestWriteServiceError_Mapping(t *testing.T) {
	storeDetail := "dial tcp 10.0.0.7:5432: connection refused"
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"diet not found", services.ErrDietNotFound, http.StatusNotFound, ErrCodeNotFound, "diet not found"},
		{"category before generic not found", fmt.Errorf("remove: %w", services.ErrCategoryNotFound), http.StatusNotFound, ErrCodeCategoryNotFound, ""},
		{"ownership changed", services.ErrOwnershipChanged, http.StatusForbidden, ErrCodeForbidden, ""},
		{"permission denied", services.ErrPermissionDenied, http.StatusForbidden, ErrCodeForbidden, ""},
		{"invalid nutrition", services.ErrInvalidNutrition, http.StatusBadRequest, ErrCodeInvalidNutrition, ""},
		{"item index", services.ErrItemIndexOutOfRange, http.StatusBadRequest, ErrCodeItemOutOfRange, ""},
		{"invalid argument", services.ErrMissingUserID, http.StatusBadRequest, ErrCodeBadRequest, ""},
		{
			"store unavailable", fmt.Errorf("%w: %w", services.ErrStoreUnavailable, errors.New(storeDetail)),
			http.StatusInternalServerError, ErrCodeInternal, "internal server error",
		},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, logs := serveError(t, tc.err)
			if w.Code != tc.status {
				t.Fatalf("status=%d want %d", w.Code, tc.status)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json: %v", err)
			}
			if resp.RequestID != "rid-err" || resp.Code != tc.code {
				t.Fatalf("unexpected body: %+v", resp)
			}
			if tc.msg != "" && resp.Message != tc.msg {
				t.Fatalf("message=%q want %q", resp.Message, tc.msg)
			}
			if tc.status >= http.StatusInternalServerError {
				if strings.Contains(w.Body.String(), "10.0.0.7") {
					t.Fatalf("store detail leaked to client: %s", w.Body.String())
				}
				if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, tc.err.Error()) {
					t.Fatalf("expected cause in error log, got: %s", logs)
				}
			} else if logs != "" {
				t.Fatalf("client errors must not log, got: %s", logs)
			}
		})
	}
}

func TestSuccessHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/diets", func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"id": "d1"}) })
	r.DELETE("/diets/:id", func(c *gin.Context) { noContent(c) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/diets", nil))
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"id":"d1"`) {
		t.Fatalf("ok: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/diets/d1", nil))
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent: %d %q", w.Code, w.Body.String())
	}
}

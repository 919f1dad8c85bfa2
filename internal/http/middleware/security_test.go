package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func secRouter(opt SecurityOptions, pre gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	r.GET("/diets", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/diets", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	r := secRouter(SecurityOptions{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diets", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" ||
		h.Get("X-Frame-Options") != "DENY" ||
		h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %#v", h)
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security", "Access-Control-Expose-Headers"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s: %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_ExposeHeadersAppend(t *testing.T) {
	pre := func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-123")
		c.Header("Access-Control-Expose-Headers", "X-Other, ETag")
		c.Next()
	}
	w := httptest.NewRecorder()
	secRouter(SecurityOptions{}, pre).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diets", nil))

	want := "X-Other, ETag, X-Request-ID, Idempotent-Replay"
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != want {
		t.Fatalf("expose headers = %q; want %q", got, want)
	}
}

func TestSecurityHeaders_PrivateCacheByMethod(t *testing.T) {
	r := secRouter(SecurityOptions{PrivateCache: true, EnablePolicy: true}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diets", nil))
	if got := w.Header().Get("Cache-Control"); got != "private, no-cache" {
		t.Fatalf("GET Cache-Control = %q", got)
	}
	if w.Header().Get("Vary") != "Authorization" || w.Header().Get("Permissions-Policy") == "" {
		t.Fatalf("missing Vary or policy: %#v", w.Header())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/diets", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" || w.Header().Get("Pragma") != "no-cache" {
		t.Fatalf("POST cache headers = %#v", w.Header())
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	r := secRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/diets", nil))
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/diets", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=3600; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}

	def := secRouter(SecurityOptions{EnableHSTS: true}, nil)
	req = httptest.NewRequest(http.MethodGet, "/diets", nil)
	req.TLS = &tls.ConnectionState{}
	w = httptest.NewRecorder()
	def.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("default HSTS = %q", got)
	}
}

func Test_isHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(req) {
		t.Fatalf("plain HTTP should not be https")
	}
	req.TLS = &tls.ConnectionState{}
	if !isHTTPS(req) {
		t.Fatalf("TLS request should be https")
	}
}

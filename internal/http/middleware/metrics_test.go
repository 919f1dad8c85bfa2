package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersRoutesAndSkips(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/diets/:id", func(c *gin.Context) { c.String(http.StatusOK, "hello") })
	r.DELETE("/diets/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/diets/:id", "200"))
	baseDel := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/diets/:id", "204"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404"))
	baseHealth := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/health", "200"))

	for _, rq := range []struct{ method, path string }{
		{http.MethodGet, "/diets/d1"},
		{http.MethodGet, "/diets/d2"},
		{http.MethodDelete, "/diets/d1"},
		{http.MethodGet, "/wp-admin/x"},
		{http.MethodGet, "/health"},
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(rq.method, rq.path, nil))
	}

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/diets/:id", "200")); got != baseOK+2 {
		t.Fatalf("GET route counter = %v; want %v", got, baseOK+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("DELETE", "/diets/:id", "204")); got != baseDel+1 {
		t.Fatalf("DELETE route counter = %v; want %v", got, baseDel+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", unmatchedRoute, "404")); got != base404+1 {
		t.Fatalf("unmatched counter = %v; want %v", got, base404+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/health", "200")); got != baseHealth {
		t.Fatalf("/health must not be recorded, counter moved to %v", got)
	}
	if inFlight := testutil.ToFloat64(httpInflight); inFlight != 0 {
		t.Fatalf("httpInflight = %v; want 0", inFlight)
	}
}

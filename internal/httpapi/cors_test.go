package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mossy-p/chat-gateway/internal/httpapi"
)

func newFilteredRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(httpapi.OriginFilter(origins))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func doRequest(router *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/health", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestOriginFilter_AllowedOriginGetsCORSHeaders(t *testing.T) {
	router := newFilteredRouter("https://app.example.com")

	w := doRequest(router, http.MethodGet, "https://app.example.com")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the request origin", got)
	}
}

func TestOriginFilter_UnknownOriginRejected(t *testing.T) {
	router := newFilteredRouter("https://app.example.com")

	w := doRequest(router, http.MethodGet, "https://evil.example.com")

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestOriginFilter_NoOriginPassesThrough(t *testing.T) {
	router := newFilteredRouter("https://app.example.com")

	w := doRequest(router, http.MethodGet, "")

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d for originless request", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want unset", got)
	}
}

func TestOriginFilter_PreflightShortCircuits(t *testing.T) {
	router := newFilteredRouter("https://app.example.com")

	w := doRequest(router, http.MethodOptions, "https://app.example.com")

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmerrifield20/phishguard/internal/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_generatedWhenMissing(t *testing.T) {
	r := setupRouter(t, handler.RouterConfig{})

	w := postJSON(r, "/api/v1/check", `{"url":"https://example.com"}`)
	id := w.Header().Get(handler.RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "expected generated UUID, got %q", id)
}

func TestRequestID_echoesIncoming(t *testing.T) {
	r := setupRouter(t, handler.RouterConfig{})

	w := postJSON(r, "/api/v1/check", `{"url":"https://example.com"}`, handler.RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(handler.RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	r := setupRouter(t, handler.RouterConfig{})

	w := postJSON(r, "/check", `{"url":"https://example.com"}`)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimiter_rejectsBurst(t *testing.T) {
	// rps 1 → burst 2
	r := setupRouter(t, handler.RouterConfig{RateLimitRPS: 1})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := postJSON(r, "/api/v1/check", `{"url":"https://example.com"}`)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORS_wildcardAllowsAnyOrigin(t *testing.T) {
	r := setupRouter(t, handler.RouterConfig{CORSOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodOptions, "/check", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit_rejectsOversizedBody(t *testing.T) {
	r := setupRouter(t, handler.RouterConfig{})

	body := `{"url":"https://example.com/` + strings.Repeat("a", 2<<20) + `"}`
	w := postJSON(r, "/api/v1/check", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

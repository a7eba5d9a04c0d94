package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:       "X-Forwarded-For single",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			remoteAddr: "10.0.0.1:1234",
			want:       "203.0.113.7",
		},
		{
			name:       "X-Forwarded-For chain takes first hop",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2, 10.0.0.3"},
			remoteAddr: "10.0.0.1:1234",
			want:       "203.0.113.7",
		},
		{
			name:       "X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			remoteAddr: "10.0.0.1:1234",
			want:       "198.51.100.4",
		},
		{
			name:       "X-Forwarded-For wins over X-Real-IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7", "X-Real-IP": "198.51.100.4"},
			remoteAddr: "10.0.0.1:1234",
			want:       "203.0.113.7",
		},
		{
			name:       "remote address with port",
			remoteAddr: "192.0.2.9:55555",
			want:       "192.0.2.9",
		},
		{
			name:       "remote address without port",
			remoteAddr: "192.0.2.9",
			want:       "192.0.2.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	server := newTestServer()
	t.Cleanup(func() { _ = server.Close() })

	called := false
	handler := server.corsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/session/abc", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	server := newTestServer()
	t.Cleanup(func() { _ = server.Close() })

	handler := server.corsMiddleware(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})

	req := httptest.NewRequest(http.MethodOptions, "/session", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	server := newTestServer() // rate limiting off
	t.Cleanup(func() { _ = server.Close() })

	handler := server.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for range 50 {
		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		w := httptest.NewRecorder()
		handler(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddlewareEnforcesLimit(t *testing.T) {
	server := newTestServer()
	server.rateLimiter = NewRateLimiter(2, 100)
	t.Cleanup(func() { _ = server.Close() })

	handler := server.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		w := httptest.NewRecorder()
		handler(w, req)

		if i < 2 {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
			assert.Equal(t, "60", w.Header().Get("Retry-After"))
		}
	}

	// A different client is unaffected.
	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	req.RemoteAddr = "192.0.2.2:1000"
	w := httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSecurityConfig(t *testing.T) {
	t.Parallel()
	config := DefaultSecurityConfig()

	assert.True(t, config.EnableCORS)
	assert.Equal(t, []string{"*"}, config.AllowedOrigins)
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodOptions}, config.AllowedMethods)
	assert.Equal(t, DefaultMaxDigits, config.MaxDigits)
}

func TestSecurityMiddleware_SecurityHeaders(t *testing.T) {
	t.Parallel()
	handler := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/multiply", http.NoBody))

	for header, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"X-XSS-Protection":        "1; mode=block",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	} {
		assert.Equal(t, want, rec.Header().Get(header), header)
	}
}

func TestSecurityMiddleware_CORS(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		config         SecurityConfig
		origin         string
		expectedOrigin string
	}{
		{
			name:   "CORS disabled",
			config: SecurityConfig{EnableCORS: false},
			origin: "http://example.com",
		},
		{
			name:           "wildcard origin",
			config:         SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}},
			origin:         "http://example.com",
			expectedOrigin: "*",
		},
		{
			name:           "wildcard without Origin header",
			config:         SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET"}},
			expectedOrigin: "*",
		},
		{
			name:           "listed origin",
			config:         SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test", "http://b.test"}, AllowedMethods: []string{"GET"}},
			origin:         "http://b.test",
			expectedOrigin: "http://b.test",
		},
		{
			name:   "unlisted origin",
			config: SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test"}, AllowedMethods: []string{"GET"}},
			origin: "http://evil.test",
		},
		{
			name:   "no Origin header with specific origins",
			config: SecurityConfig{EnableCORS: true, AllowedOrigins: []string{"http://a.test"}, AllowedMethods: []string{"GET"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := SecurityMiddleware(tt.config, func(w http.ResponseWriter, r *http.Request) {})
			req := httptest.NewRequest(http.MethodGet, "/multiply", http.NoBody)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, tt.expectedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.expectedOrigin != "" {
				assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
				assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestSecurityMiddleware_Preflight(t *testing.T) {
	t.Parallel()
	nextCalled := false
	handler := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/multiply", http.NoBody)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, nextCalled, "preflight must not reach the handler")
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityMiddleware_PassesThrough(t *testing.T) {
	t.Parallel()
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()
			handler := SecurityMiddleware(DefaultSecurityConfig(), func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = w.Write([]byte("from next"))
			})
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(method, "/x", http.NoBody))

			assert.Equal(t, http.StatusTeapot, rec.Code)
			assert.Equal(t, "from next", rec.Body.String())
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		})
	}
}

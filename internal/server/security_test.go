package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/contactform/internal/config"
)

func TestSecurityHeaders(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "script-src 'self'")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestCrossOriginSubmitRejected(t *testing.T) {
	s := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestValidateOrigin(t *testing.T) {
	allowed := []string{"https://forms.example"}

	tests := []struct {
		name    string
		origin  string
		referer string
		ok      bool
	}{
		{"no origin", "", "", true},
		{"same host", "http://example.com", "", true},
		{"allowed", "https://forms.example", "", true},
		{"foreign", "http://evil.example", "", false},
		{"bad scheme", "file://example.com", "", false},
		{"referer same host", "", "http://example.com/contact", true},
		{"referer foreign", "", "http://evil.example/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://example.com/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}

			err := validateOrigin(req, allowed)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCORSForAllowedOrigin(t *testing.T) {
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"https://forms.example"}
	s := New(cfg, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/validate", nil)
	req.Header.Set("Origin", "https://forms.example")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://forms.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProductionSecurityConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Environment = "production"

	sc := SecurityConfigFromAppConfig(cfg, nil)

	assert.NotNil(t, sc.HSTS)
	assert.Contains(t, buildCSPHeader(sc.CSP), "upgrade-insecure-requests")
	assert.Equal(t, "max-age=31536000; includeSubDomains", buildHSTSHeader(sc.HSTS))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	assert.Equal(t, "1.2.3.4", getClientIP(req))
}

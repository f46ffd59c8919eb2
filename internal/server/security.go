package server

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/conneroisu/contactform/internal/config"
	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/logging"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	CSP                 *CSPConfig
	HSTS                *HSTSConfig
	XFrameOptions       string
	XContentTypeNoSniff bool
	ReferrerPolicy      string
	AllowedOrigins      []string
	Logger              logging.Logger
}

// CSPConfig holds Content Security Policy configuration
type CSPConfig struct {
	DefaultSrc     []string
	ScriptSrc      []string
	StyleSrc       []string
	ConnectSrc     []string
	ObjectSrc      []string
	FrameAncestors []string
	BaseURI        []string
	FormAction     []string

	UpgradeInsecureRequests bool
}

// HSTSConfig holds HTTP Strict Transport Security configuration
type HSTSConfig struct {
	MaxAge            int
	IncludeSubDomains bool
}

// DefaultSecurityConfig returns a secure default configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		CSP: &CSPConfig{
			DefaultSrc:     []string{"'self'"},
			ScriptSrc:      []string{"'self'"},
			StyleSrc:       []string{"'self'"},
			ConnectSrc:     []string{"'self'", "ws:", "wss:"},
			ObjectSrc:      []string{"'none'"},
			FrameAncestors: []string{"'none'"},
			BaseURI:        []string{"'self'"},
			FormAction:     []string{"'self'"},
		},
		HSTS: &HSTSConfig{
			MaxAge:            31536000, // 1 year
			IncludeSubDomains: true,
		},
		XFrameOptions:       "DENY",
		XContentTypeNoSniff: true,
		ReferrerPolicy:      "strict-origin-when-cross-origin",
	}
}

// SecurityConfigFromAppConfig creates security config from application config
func SecurityConfigFromAppConfig(cfg *config.Config, logger logging.Logger) *SecurityConfig {
	sc := DefaultSecurityConfig()
	sc.AllowedOrigins = cfg.Server.AllowedOrigins
	sc.Logger = logger

	if cfg.Server.Environment == "production" {
		sc.CSP.ConnectSrc = []string{"'self'", "wss:"}
		sc.CSP.UpgradeInsecureRequests = true
	} else {
		// No HSTS on plain-http development servers.
		sc.HSTS = nil
	}

	return sc
}

// SecurityMiddleware applies security headers and rejects cross-origin
// state-changing requests.
func SecurityMiddleware(secConfig *SecurityConfig) func(http.Handler) http.Handler {
	if secConfig == nil {
		secConfig = DefaultSecurityConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applySecurityHeaders(w, r, secConfig)

			if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodOptions {
				if err := validateOrigin(r, secConfig.AllowedOrigins); err != nil {
					if secConfig.Logger != nil {
						secConfig.Logger.Warn(r.Context(), err, "Security: Invalid origin",
							"origin", r.Header.Get("Origin"),
							"referer", r.Header.Get("Referer"),
							"ip", getClientIP(r))
					}
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func applySecurityHeaders(w http.ResponseWriter, r *http.Request, config *SecurityConfig) {
	if config.CSP != nil {
		w.Header().Set("Content-Security-Policy", buildCSPHeader(config.CSP))
	}
	if config.HSTS != nil && r.TLS != nil {
		w.Header().Set("Strict-Transport-Security", buildHSTSHeader(config.HSTS))
	}
	if config.XFrameOptions != "" {
		w.Header().Set("X-Frame-Options", config.XFrameOptions)
	}
	if config.XContentTypeNoSniff {
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}
	if config.ReferrerPolicy != "" {
		w.Header().Set("Referrer-Policy", config.ReferrerPolicy)
	}
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
}

func buildCSPHeader(csp *CSPConfig) string {
	var directives []string

	addDirective := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, fmt.Sprintf("%s %s", name, strings.Join(values, " ")))
		}
	}

	addDirective("default-src", csp.DefaultSrc)
	addDirective("script-src", csp.ScriptSrc)
	addDirective("style-src", csp.StyleSrc)
	addDirective("connect-src", csp.ConnectSrc)
	addDirective("object-src", csp.ObjectSrc)
	addDirective("frame-ancestors", csp.FrameAncestors)
	addDirective("base-uri", csp.BaseURI)
	addDirective("form-action", csp.FormAction)

	if csp.UpgradeInsecureRequests {
		directives = append(directives, "upgrade-insecure-requests")
	}

	return strings.Join(directives, "; ")
}

func buildHSTSHeader(hsts *HSTSConfig) string {
	header := fmt.Sprintf("max-age=%d", hsts.MaxAge)
	if hsts.IncludeSubDomains {
		header += "; includeSubDomains"
	}
	return header
}

// requestOrigin returns the Origin header, falling back to the scheme and
// host of the Referer.
func requestOrigin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	if referer := r.Header.Get("Referer"); referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}
	return ""
}

// validateOrigin accepts requests without any origin information (non-browser
// clients), same-host origins and configured allowed origins.
func validateOrigin(r *http.Request, allowedOrigins []string) error {
	origin := requestOrigin(r)
	if origin == "" {
		return nil
	}

	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.ErrInvalidOrigin(origin)
	}
	if strings.EqualFold(u.Host, r.Host) {
		return nil
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return nil
		}
	}

	return errors.ErrInvalidOrigin(origin)
}

func (s *Server) checkOrigin(r *http.Request) error {
	return validateOrigin(r, s.config.Server.AllowedOrigins)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade reach the underlying connection.
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	rec.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

func (s *Server) addMiddleware(handler http.Handler) http.Handler {
	securityHandler := SecurityMiddleware(SecurityConfigFromAppConfig(s.config, s.logger))(handler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		securityHandler.ServeHTTP(rec, r)
		s.logger.Debug(r.Context(), "Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String())
	})
}

// isAllowedOrigin checks if the origin is in the allowed origins list
func (s *Server) isAllowedOrigin(origin string) bool {
	for _, allowed := range s.config.Server.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}

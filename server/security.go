package server

import (
	"net/http"

	"github.com/lrnselfreliance/wrolpi-sub001/config"
)

// securityHeaders wraps an http.Handler to add security headers to all responses.
type securityHeaders struct {
	handler http.Handler
	cfg     config.SecurityConfig
	devMode bool
}

// newSecurityHeaders creates a middleware that adds security headers.
func newSecurityHeaders(handler http.Handler, cfg config.SecurityConfig, devMode bool) http.Handler {
	return &securityHeaders{
		handler: handler,
		cfg:     cfg,
		devMode: devMode,
	}
}

// ServeHTTP implements http.Handler, adding security headers before delegating.
func (s *securityHeaders) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := w.Header()

	// In dev mode, disable browser caching to ensure fresh content on every request
	if s.devMode {
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
	}

	// Content-Type-Options - prevent MIME-sniffing
	if s.cfg.ContentTypeOptions != "" {
		h.Set("X-Content-Type-Options", s.cfg.ContentTypeOptions)
	}

	// Frame-Options - clickjacking protection
	if s.cfg.FrameOptions != "" {
		h.Set("X-Frame-Options", s.cfg.FrameOptions)
	}

	// XSS-Protection - legacy XSS filter (for older browsers)
	if s.cfg.XSSProtection != "" {
		h.Set("X-XSS-Protection", s.cfg.XSSProtection)
	}

	// Referrer-Policy - control referrer information
	if s.cfg.ReferrerPolicy != "" {
		h.Set("Referrer-Policy", s.cfg.ReferrerPolicy)
	}

	s.handler.ServeHTTP(w, r)
}

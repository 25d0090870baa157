package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lrnselfreliance/wrolpi-sub001/config"
)

// corsHandler adds Cross-Origin Resource Sharing headers so browser clients
// on other origins can call the API.
type corsHandler struct {
	handler http.Handler
	cfg     config.CORSConfig
}

// newCORSHandler wraps an http.Handler with CORS handling. With no origins
// configured it returns the handler unchanged.
func newCORSHandler(h http.Handler, cfg config.CORSConfig) http.Handler {
	if len(cfg.Origins) == 0 {
		return h
	}
	return &corsHandler{handler: h, cfg: cfg}
}

func (c *corsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	// No Origin header means same-origin request - no CORS needed
	if origin == "" {
		c.handler.ServeHTTP(w, r)
		return
	}

	// Origin not allowed - continue without CORS headers
	// Browser will block the response
	if !c.originAllowed(origin) {
		c.handler.ServeHTTP(w, r)
		return
	}

	c.setHeaders(w, origin)

	// Handle preflight (OPTIONS) requests
	if r.Method == http.MethodOptions {
		c.handlePreflight(w, r)
		return
	}

	c.handler.ServeHTTP(w, r)
}

// originAllowed checks if the given origin is in the allowed list
func (c *corsHandler) originAllowed(origin string) bool {
	if c.cfg.Origins.Contains("*") {
		return true
	}
	return c.cfg.Origins.Contains(origin)
}

// setHeaders sets the appropriate CORS response headers
func (c *corsHandler) setHeaders(w http.ResponseWriter, origin string) {
	// Use specific origin when credentials are enabled (not "*")
	if c.cfg.Credentials || !c.cfg.Origins.Contains("*") {
		w.Header().Set("Access-Control-Allow-Origin", origin)
	} else {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}

	if c.cfg.Credentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}

	// Expose headers to JavaScript
	if len(c.cfg.Expose) > 0 {
		w.Header().Set("Access-Control-Expose-Headers", strings.Join(c.cfg.Expose, ", "))
	}

	// Vary: Origin ensures different origins get different cached responses
	w.Header().Add("Vary", "Origin")
}

// handlePreflight handles OPTIONS preflight requests
func (c *corsHandler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	methods := c.cfg.Methods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "DELETE"}
	}
	w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))

	if len(c.cfg.Headers) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(c.cfg.Headers, ", "))
	} else {
		// If not configured, echo back the requested headers
		requestedHeaders := r.Header.Get("Access-Control-Request-Headers")
		if requestedHeaders != "" {
			w.Header().Set("Access-Control-Allow-Headers", requestedHeaders)
		}
	}

	// Set max age for preflight caching
	if c.cfg.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(c.cfg.MaxAge))
	}

	w.WriteHeader(http.StatusNoContent)
}

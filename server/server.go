package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/lrnselfreliance/wrolpi-sub001/config"
	"github.com/lrnselfreliance/wrolpi-sub001/pkg/units"
	"github.com/lrnselfreliance/wrolpi-sub001/store"
)

// Server is the ratio calculator daemon: a JSON API over live calculator
// sessions, plus rendered documentation pages.
type Server struct {
	config      *config.Config
	configPath  string
	stdout      io.Writer
	stderr      io.Writer
	mux         *http.ServeMux
	server      *http.Server
	store       *store.Store // nil when persistence is disabled
	sessions    *sessionManager
	rateLimiter *rateLimiter
	format      *units.Formatter
	docs        *docsHandler
	watcher     *Watcher
	version     string
}

// New creates a server around the given configuration. st may be nil to run
// without persisted unit preferences.
func New(cfg *config.Config, configPath string, st *store.Store, version string, stdout, stderr io.Writer) *Server {
	s := &Server{
		config:      cfg,
		configPath:  configPath,
		stdout:      stdout,
		stderr:      stderr,
		mux:         http.NewServeMux(),
		store:       st,
		sessions:    newSessionManager(cfg.Sessions.TTL, cfg.Sessions.Max),
		rateLimiter: newRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		format:      units.NewFormatter(cfg.Locale),
		docs:        newDocsHandler(cfg.Docs.Dir),
		version:     version,
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures the HTTP mux.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/units", s.handleUnits)
	s.mux.HandleFunc("POST /api/calculators", s.handleCreateCalculator)
	s.mux.HandleFunc("GET /api/calculators/{id}", s.handleGetCalculator)
	s.mux.HandleFunc("DELETE /api/calculators/{id}", s.handleDeleteCalculator)
	s.mux.HandleFunc("POST /api/calculators/{id}/events", s.handleCalculatorEvent)
	s.mux.Handle("GET /docs", s.docs)
	s.mux.Handle("GET /docs/{page}", s.docs)
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := s.listenAddr()

	// In dev mode, watch the docs dir so edits show up without a restart
	if s.config.Server.Dev {
		watcher, err := NewWatcher(s.docs, s.configPath, s.stdout, s.stderr)
		if err != nil {
			s.logError("failed to create watcher: %v", err)
		} else {
			s.watcher = watcher
			if err := s.watcher.Start(ctx); err != nil {
				s.logError("failed to start watcher: %v", err)
			}
			defer s.watcher.Close()
		}
	}

	// Expire idle calculator sessions in the background
	go s.sessions.run(ctx)

	// Build handler chain
	var handler http.Handler = s.mux
	handler = newCompressionHandler(handler, s.config.Compression)
	handler = newCORSHandler(handler, s.config.CORS)
	handler = newSecurityHeaders(handler, s.config.Security, s.config.Server.Dev)

	// Wrap with request logging middleware (unless quiet or error-only)
	if !s.config.Logging.Quiet && s.config.Logging.Level != "error" {
		handler = newRequestLogger(handler, s.stdout, s.config.Logging.Format)
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(s.stdout, "Serving ratio calculators on http://%s\n", addr)
		errCh <- s.server.ListenAndServe()
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		fmt.Fprintf(s.stdout, "\nShutting down gracefully...\n")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// listenAddr returns the address to listen on based on configuration.
func (s *Server) listenAddr() string {
	host := s.config.Server.Host
	port := s.config.Server.Port

	if s.config.Server.Dev && host == "" {
		host = "localhost"
	}

	return fmt.Sprintf("%s:%d", host, port)
}

func (s *Server) logError(format string, args ...interface{}) {
	fmt.Fprintf(s.stderr, "[ERROR] "+format+"\n", args...)
}

// ABOUTME: HTTP server wiring for the knowledge base API and web UI.
// ABOUTME: Owns the mux, listener lifecycle, and graceful shutdown.

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/wenli/kbase/internal/store"
)

// Server serves the knowledge base REST API and the web UI.
type Server struct {
	store      store.Store
	summarizer Summarizer
	webui      http.Handler
	httpServer *http.Server
	logger     *slog.Logger
}

// Config holds the dependencies for a Server.
type Config struct {
	Addr       string
	Store      store.Store
	Summarizer Summarizer
	// WebUI, when non-nil, is mounted at / for everything outside /api and /health.
	WebUI  http.Handler
	Logger *slog.Logger
}

// New creates a Server with its routes registered.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Summarizer == nil {
		return nil, fmt.Errorf("summarizer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:      cfg.Store,
		summarizer: cfg.Summarizer,
		webui:      cfg.WebUI,
		logger:     logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/qa", s.handleQA)
	mux.HandleFunc("/api/reading", s.handleReading)
	mux.HandleFunc("/api/summarize", s.handleSummarize)
	if s.webui != nil {
		mux.Handle("/", s.webui)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the server's root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

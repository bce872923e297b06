package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/usersettings"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	store      *usersettings.Store
	logger     usersettings.Logger
	router     *chi.Mux
	httpServer *http.Server

	shutdownTimeout time.Duration
}

// Config holds configuration for the API server. Zero timeouts take the defaults below.
type Config struct {
	ListenAddress   string
	Store           *usersettings.Store
	Logger          usersettings.Logger
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// NewServer creates and configures a new API server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = usersettings.NewDefaultLogger()
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}

	s := &Server{
		store:  cfg.Store,
		logger: cfg.Logger,
		router: chi.NewRouter(),

		shutdownTimeout: orDefault(cfg.ShutdownTimeout, defaultShutdownTimeout),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      s.router,
		ReadTimeout:  orDefault(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout: orDefault(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:  orDefault(cfg.IdleTimeout, defaultIdleTimeout),
	}

	return s, nil
}

// Handler returns the router, for mounting or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server. It blocks until the server is shut down or fails to serve,
// and returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting at most the configured shutdown timeout
// for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("API server stopping", "timeout", s.shutdownTimeout.String())
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("API server stopped gracefully")
	return nil
}

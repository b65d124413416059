package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/landing-page/internal/config"
)

// Drainer waits for background work started by request handlers.
type Drainer interface {
	Wait(ctx context.Context) error
}

// Server represents the landing page HTTP server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
	drainer Drainer
}

// NewServer creates a new server. drainer may be nil.
func NewServer(cfg config.ServerConfig, h *Handlers, health *HealthChecker, static http.Handler, drainer Drainer) *Server {
	return &Server{
		config:  cfg,
		handler: SetupRoutes(h, health, static),
		drainer: drainer,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       s.config.ReadTimeout(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.config.WriteTimeout(),
		IdleTimeout:       s.config.IdleTimeout(),
	}

	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight requests, then
// waits for pending capture events, all within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.drainer != nil {
		return s.drainer.Wait(ctx)
	}
	return nil
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}

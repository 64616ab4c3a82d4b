package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/adpilot/meta-ads-monitor/internal/metrics"
)

// Server wraps the HTTP server lifecycle around the configured router.
type Server struct {
	router *chi.Mux
	server *http.Server
}

// NewServer builds the full route tree and returns a server ready to
// listen.
func NewServer(h *Handlers, auth config.AuthConfig, m *metrics.Metrics) *Server {
	return &Server{router: SetupRoutes(h, auth, m)}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server on addr and blocks until it
// stops. The write timeout leaves room for synchronous scoring runs.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       5 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting in-flight requests
// finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/adpilot/meta-ads-monitor/internal/config"
	"github.com/adpilot/meta-ads-monitor/internal/metrics"
	"github.com/adpilot/meta-ads-monitor/internal/pkg/httputil"
)

// SetupRoutes configures all API routes. Pass nil m to skip HTTP
// instrumentation (tests mostly do).
func SetupRoutes(h *Handlers, auth config.AuthConfig, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	if m != nil {
		r.Use(m.Middleware)
	}

	// CORS for dashboard access
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public endpoints (no auth)
	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", metrics.Handler())

	// Check for development mode
	devMode := os.Getenv("DEV_MODE") == "true" || os.Getenv("ENVIRONMENT") == "development"

	r.Route("/api", func(r chi.Router) {
		// API key authentication middleware
		if auth.Enabled && auth.APIKey != "" && !devMode {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					if req.Header.Get("X-API-Key") != auth.APIKey {
						httputil.Error(w, http.StatusUnauthorized, "invalid or missing API key")
						return
					}
					next.ServeHTTP(w, req)
				})
			})
		}

		r.Route("/scoring", func(r chi.Router) {
			r.Route("/accounts/{accountID}", func(r chi.Router) {
				r.Post("/run", h.RunScoring)
				r.Get("/latest", h.GetLatestRun)
				r.Get("/digest", h.GetDigest)
			})
			r.Get("/runs", h.ListRuns)
			r.Route("/configs", func(r chi.Router) {
				r.Get("/", h.ListConfigs)
				r.Post("/", h.UpsertConfig)
				r.Get("/{id}", h.GetConfig)
				r.Delete("/{id}", h.DeleteConfig)
			})
		})

		r.Get("/creatives", h.ListCreatives)
	})

	return r
}

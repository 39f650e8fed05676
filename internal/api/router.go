// Package api provides the HTTP API for the leave-time service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/leavetime/leavetime/internal/api/handler"
	"github.com/leavetime/leavetime/internal/api/middleware"
	"github.com/leavetime/leavetime/internal/api/response"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger

	// Metrics records HTTP metrics (optional).
	Metrics *middleware.Metrics

	CORSOrigins []string
	RequireTLS  bool

	Trips  handler.TripService
	Places handler.Suggester

	// Health lists provider health for the status endpoint (optional).
	Health handler.HealthSource

	// Configured reports whether the maps credential is present.
	Configured bool

	// MaxBodyBytes bounds estimate bodies. Zero uses middleware.DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.CORS(cfg.CORSOrigins))      // Browser clients
	r.Use(middleware.ContentTypeJSON)            // JSON content type

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Health, cfg.Configured)
	estimateHandler := handler.NewEstimateHandler(cfg.Trips, cfg.Logger)
	placesHandler := handler.NewPlacesHandler(cfg.Places, cfg.Configured, cfg.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.With(
			middleware.RateLimitByIP(middleware.EstimateRateLimit),
			middleware.RequireJSON,
			middleware.MaxBodySize(maxBody),
		).Post("/trip/estimate", estimateHandler.Estimate)

		r.With(middleware.RateLimitByIP(middleware.SuggestRateLimit)).
			Get("/places/suggest", placesHandler.Suggest)

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})
	})

	return r
}

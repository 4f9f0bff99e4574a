package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/tracking"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/webhooks"
)

// SetupRoutes configures the full route tree: public redirects, partner
// webhooks, and the versioned API.
func SetupRoutes(h *Handlers, redirects *tracking.Handler, hooks *webhooks.Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://fitbites.app", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	// Public redirect endpoint; must stay unauthenticated for partner links
	// embedded in the app and in shared recipes.
	r.Get("/go/{linkID}", redirects.HandleRedirect)

	// Partner postbacks, authenticated by HMAC signature.
	r.Mount("/webhooks/affiliate", hooks.Routes())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/affiliate-links/tracked", h.CreateTrackedLinks)
		r.Route("/affiliate", func(r chi.Router) {
			r.Get("/summary", h.GetSummary)
			r.Get("/clicks", h.GetClickStats)
			r.Get("/partners", h.GetPartners)
			r.Get("/fraud", h.GetFraudFindings)
			r.Get("/health", h.GetTrackingHealth)
		})
	})

	return r
}

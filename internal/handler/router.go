package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	CORSOrigins []string
	// RegisterLimiter throttles the two registration endpoints. Nil disables it.
	RegisterLimiter *rate.Limiter
	// WebDir, when set, is served at the root as static files.
	WebDir string
}

// NewRouter builds the chi router for the booking API.
func NewRouter(h *ClassHandler, logger *zap.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(logger))          // structured access log
	r.Use(CORS(opts.CORSOrigins))

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/schedule", h.ListClasses)
		r.Post("/schedule", h.CreateClass)
		r.Get("/schedule/{id}", h.GetClass)

		r.Group(func(r chi.Router) {
			r.Use(RateLimit(opts.RegisterLimiter))
			r.Post("/register", h.Register)
			r.Post("/register_web", h.RegisterWeb)
		})

		r.Get("/registrations", h.ListRegistrations)
		r.Get("/consistency", h.Consistency)
	})

	if opts.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.WebDir)))
	}

	return r
}

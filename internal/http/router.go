package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/movietix/backend/internal/observability"
	"github.com/movietix/backend/internal/rateLimit"
)

// SetupRouter wires all routes. rl may be nil when redis is not
// configured (tests, local runs without a cache).
func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)
	if rl != nil {
		r.Use(RateLimitMiddleware(rl))
	}

	r.Post("/v1/auth/register", h.Register)
	r.Post("/v1/auth/login", h.Login)

	r.Get("/v1/movies", h.ListMovies)
	r.Get("/v1/shows", h.ListShows)
	r.Get("/v1/shows/{id}/seats", h.GetSeatMap)
	r.Get("/v1/bookings/{id}", h.GetBooking)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(h.auth))
		pr.Post("/v1/movies", h.CreateMovie)
		pr.Post("/v1/shows", h.CreateShow)
		pr.Post("/v1/bookings", h.CreateBooking)
	})

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

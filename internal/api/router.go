package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

// Dependencies are the collaborators the router hands to its handlers.
// Redis and RedisPinger may be nil, which disables the idempotency guard.
type Dependencies struct {
	Subscriptions  SubscriptionService
	Publisher      Publisher
	Metrics        MetricsSource
	PostgresPinger Pinger
	RedisPinger    Pinger
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	subHandler := NewSubscriptionHandler(deps.Subscriptions, deps.Logger)
	newsletterHandler := NewNewsletterHandler(deps.Publisher, deps.Logger)

	r.Get("/health", HealthHandler(deps.PostgresPinger, deps.RedisPinger))
	r.Get("/metrics", MetricsHandler(deps.Metrics, deps.Logger))

	r.Route("/subscriptions", func(r chi.Router) {
		r.Post("/", subHandler.Subscribe)
		r.Get("/confirm", subHandler.Confirm)
	})

	r.Group(func(r chi.Router) {
		if deps.Redis != nil {
			r.Use(Idempotency(deps.Redis, deps.IdempotencyTTL, deps.Logger))
		}
		r.Post("/newsletters", newsletterHandler.Publish)
	})

	return r
}

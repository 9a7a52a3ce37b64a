package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is implemented by store.PostgresStore and store.RedisStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

const healthPingTimeout = 2 * time.Second

// HealthHandler reports 503 when Postgres is unreachable. Redis only backs
// the idempotency guard, so its state is reported without affecting the
// status code. redis may be nil.
func HealthHandler(postgres Pinger, redis Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		resp := HealthResponse{
			Status:   "healthy",
			Version:  "1.0.0",
			Postgres: pingState(ctx, postgres),
			Redis:    pingState(ctx, redis),
		}

		status := http.StatusOK
		if resp.Postgres != "up" {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
		respondJSON(w, status, resp)
	}
}

func pingState(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Priya8975/newsletter-delivery-system/internal/store"
)

// MetricsSource is implemented by *store.SubscriptionStore.
type MetricsSource interface {
	SubscriptionMetrics(ctx context.Context) (*store.SubscriptionMetrics, error)
}

// MetricsHandler returns subscription counts.
func MetricsHandler(source MetricsSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics, err := source.SubscriptionMetrics(r.Context())
		if err != nil {
			logger.Error("failed to get metrics", "error", err)
			respondError(w, http.StatusInternalServerError, "failed to get metrics")
			return
		}
		respondJSON(w, http.StatusOK, metrics)
	}
}

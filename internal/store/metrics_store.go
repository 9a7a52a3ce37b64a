package store

import (
	"context"
	"fmt"

	"github.com/Priya8975/newsletter-delivery-system/internal/domain"
)

// SubscriptionMetrics holds aggregated subscription statistics.
type SubscriptionMetrics struct {
	PendingSubscribers   int64   `json:"pending_subscribers"`
	ConfirmedSubscribers int64   `json:"confirmed_subscribers"`
	TokensIssued         int64   `json:"tokens_issued"`
	ConfirmationRate     float64 `json:"confirmation_rate"`
}

// SubscriptionMetrics returns aggregated subscription statistics from the database.
func (s *SubscriptionStore) SubscriptionMetrics(ctx context.Context) (*SubscriptionMetrics, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var m SubscriptionMetrics

	err := s.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $1) AS pending,
			COUNT(*) FILTER (WHERE status = $2) AS confirmed
		FROM subscriptions
	`, string(domain.StatusPendingConfirmation), string(domain.StatusConfirmed)).Scan(&m.PendingSubscribers, &m.ConfirmedSubscribers)
	if err != nil {
		return nil, fmt.Errorf("querying subscriber counts: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM subscription_tokens
	`).Scan(&m.TokensIssued)
	if err != nil {
		return nil, fmt.Errorf("querying token count: %w", err)
	}

	if total := m.PendingSubscribers + m.ConfirmedSubscribers; total > 0 {
		m.ConfirmationRate = float64(m.ConfirmedSubscribers) / float64(total) * 100
	}

	return &m, nil
}

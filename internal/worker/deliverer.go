package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Priya8975/newsletter-delivery-system/internal/email"
)

const defaultSendTimeout = 10 * time.Second

// Deliverer sends a single email through the configured transport and logs
// the outcome.
type Deliverer struct {
	sender  email.Sender
	timeout time.Duration
	logger  *slog.Logger
}

// NewDeliverer creates a deliverer. A non-positive timeout falls back to 10s.
func NewDeliverer(sender email.Sender, timeout time.Duration, logger *slog.Logger) *Deliverer {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Deliverer{
		sender:  sender,
		timeout: timeout,
		logger:  logger,
	}
}

// Deliver sends msg, bounded by the deliverer's timeout.
func (d *Deliverer) Deliver(ctx context.Context, msg email.Message) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.sender.Send(ctx, msg)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		d.logger.Warn("email delivery failed",
			"recipient", msg.To,
			"subject", msg.Subject,
			"error", err,
			"elapsed_ms", elapsed,
		)
		return err
	}

	d.logger.Info("email delivered",
		"recipient", msg.To,
		"subject", msg.Subject,
		"elapsed_ms", elapsed,
	)
	return nil
}

package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Priya8975/newsletter-delivery-system/internal/domain"
	"github.com/Priya8975/newsletter-delivery-system/internal/email"
	"github.com/Priya8975/newsletter-delivery-system/internal/worker"
)

const DefaultFanOutWorkers = 10

// SubscriberReader lists the stored address of every confirmed subscriber.
type SubscriberReader interface {
	ConfirmedSubscriberEmails(ctx context.Context) ([]string, error)
}

// FailedRecipient is a confirmed subscriber whose send failed.
type FailedRecipient struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// PublishReport summarises one newsletter fan-out.
type PublishReport struct {
	Delivered int               `json:"delivered"`
	Skipped   int               `json:"skipped"`
	Failed    []FailedRecipient `json:"failed,omitempty"`
}

// FanOutEngine sends a newsletter issue to every confirmed subscriber.
type FanOutEngine struct {
	store     SubscriberReader
	deliverer *worker.Deliverer
	workers   int
	logger    *slog.Logger
}

func NewFanOutEngine(store SubscriberReader, deliverer *worker.Deliverer, workers int, logger *slog.Logger) *FanOutEngine {
	if workers < 1 {
		workers = DefaultFanOutWorkers
	}
	return &FanOutEngine{
		store:     store,
		deliverer: deliverer,
		workers:   workers,
		logger:    logger,
	}
}

// Publish dispatches the newsletter to every confirmed subscriber whose
// stored address still parses. Invalid addresses are skipped. Sends continue
// past individual failures; if any failed, the returned error wraps
// ErrDispatch and the report lists them. Publish returns after every send
// has completed.
func (f *FanOutEngine) Publish(ctx context.Context, n domain.Newsletter) (*PublishReport, error) {
	emails, err := f.store.ConfirmedSubscriberEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading confirmed subscribers: %w", err)
	}

	report := &PublishReport{}
	recipients := make([]domain.SubscriberEmail, 0, len(emails))
	for _, raw := range emails {
		addr, err := domain.ParseSubscriberEmail(raw)
		if err != nil {
			f.logger.Warn("skipping a confirmed subscriber, stored contact details are invalid",
				"error", err,
			)
			report.Skipped++
			continue
		}
		recipients = append(recipients, addr)
	}

	if len(recipients) == 0 {
		f.logger.Info("no deliverable subscribers", "title", n.Title, "skipped", report.Skipped)
		return report, nil
	}

	pool := worker.NewPool(min(f.workers, len(recipients)), f.deliverer, f.logger)
	pool.Start(ctx)
	for _, addr := range recipients {
		pool.Submit(email.Message{
			To:      addr.String(),
			Subject: n.Title,
			HTML:    n.HTML,
			Text:    n.Text,
		})
	}

	for _, res := range pool.Stop() {
		if res.Err != nil {
			report.Failed = append(report.Failed, FailedRecipient{Email: res.Recipient, Error: res.Err.Error()})
			continue
		}
		report.Delivered++
	}

	f.logger.Info("fan-out complete",
		"title", n.Title,
		"delivered", report.Delivered,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
	)

	if len(report.Failed) > 0 {
		return report, fmt.Errorf("%w: %d of %d newsletter sends failed", ErrDispatch, len(report.Failed), len(recipients))
	}
	return report, nil
}

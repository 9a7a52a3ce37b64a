package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/Priya8975/newsletter-delivery-system/internal/domain"
	"github.com/Priya8975/newsletter-delivery-system/internal/email"
	"github.com/Priya8975/newsletter-delivery-system/internal/worker"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const confirmationSubject = "Welcome!"

// SubscriptionStore is the persistence needed by the confirmation workflow.
// *store.SubscriptionStore implements it.
type SubscriptionStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	InsertPendingSubscriber(ctx context.Context, tx pgx.Tx, sub domain.NewSubscriber) (*domain.Subscriber, error)
	StoreToken(ctx context.Context, tx pgx.Tx, subscriberID uuid.UUID, token string) error
	SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, bool, error)
	ConfirmSubscriber(ctx context.Context, subscriberID uuid.UUID) error
}

// SubscriptionWorkflow implements double opt-in: Subscribe records a pending
// subscriber and mails a confirmation link, Confirm redeems the link.
type SubscriptionWorkflow struct {
	store     SubscriptionStore
	deliverer *worker.Deliverer
	baseURL   string
	logger    *slog.Logger
}

func NewSubscriptionWorkflow(store SubscriptionStore, deliverer *worker.Deliverer, baseURL string, logger *slog.Logger) *SubscriptionWorkflow {
	return &SubscriptionWorkflow{
		store:     store,
		deliverer: deliverer,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Subscribe validates the input, stores the pending subscriber together with
// a fresh token, and sends the confirmation email once the transaction has
// committed. A send failure leaves the subscriber pending and returns ErrDispatch.
func (w *SubscriptionWorkflow) Subscribe(ctx context.Context, rawName, rawEmail string) error {
	sub, err := domain.ParseNewSubscriber(rawName, rawEmail)
	if err != nil {
		return err
	}

	subscriberID, token, err := w.persist(ctx, sub)
	if err != nil {
		return err
	}

	link, err := ConfirmationLink(w.baseURL, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	if err := w.deliverer.Deliver(ctx, confirmationMessage(sub.Email.String(), link)); err != nil {
		return fmt.Errorf("%w: sending confirmation email: %v", ErrDispatch, err)
	}

	w.logger.Info("subscriber pending confirmation", "subscriber_id", subscriberID)
	return nil
}

// persist writes the subscriber row and its token in one transaction.
func (w *SubscriptionWorkflow) persist(ctx context.Context, sub domain.NewSubscriber) (id uuid.UUID, token string, err error) {
	tx, err := w.store.Begin(ctx)
	if err != nil {
		return uuid.Nil, "", err
	}
	defer func() {
		if err != nil {
			w.rollback(ctx, tx)
		}
	}()

	row, err := w.store.InsertPendingSubscriber(ctx, tx, sub)
	if err != nil {
		return uuid.Nil, "", err
	}
	id = row.ID

	token, err = GenerateToken()
	if err != nil {
		return uuid.Nil, "", err
	}

	if err = w.store.StoreToken(ctx, tx, id, token); err != nil {
		return uuid.Nil, "", err
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, "", fmt.Errorf("committing subscription: %w", err)
	}
	return id, token, nil
}

func (w *SubscriptionWorkflow) rollback(ctx context.Context, tx pgx.Tx) {
	// The request context may already be cancelled; the rollback must still run.
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		w.logger.Error("failed to roll back subscription", "error", err)
	}
}

// Confirm promotes the subscriber holding token to confirmed. Confirming an
// already confirmed subscriber succeeds.
func (w *SubscriptionWorkflow) Confirm(ctx context.Context, token string) error {
	if !ValidToken(token) {
		return ErrMalformedToken
	}

	id, found, err := w.store.SubscriberIDByToken(ctx, token)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrUnknownToken
	}

	if err := w.store.ConfirmSubscriber(ctx, id); err != nil {
		return err
	}

	w.logger.Info("subscriber confirmed", "subscriber_id", id)
	return nil
}

// ConfirmationLink builds <baseURL>/subscriptions/confirm?subscription_token=<token>.
func ConfirmationLink(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}
	u = u.JoinPath("subscriptions", "confirm")
	u.RawQuery = url.Values{"subscription_token": {token}}.Encode()
	return u.String(), nil
}

func confirmationMessage(to, link string) email.Message {
	return email.Message{
		To:      to,
		Subject: confirmationSubject,
		HTML: fmt.Sprintf(
			`Welcome to our newsletter!<br />Click <a href="%s">here</a> to confirm your subscription.`,
			link,
		),
		Text: fmt.Sprintf("Welcome to our newsletter!\nVisit %s to confirm your subscription.", link),
	}
}

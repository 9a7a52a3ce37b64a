package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Priya8975/newsletter-delivery-system/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by SubscriptionStore.
// pgxmock.PgxPoolIface satisfies it in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SubscriptionStore owns the subscriptions and subscription_tokens tables.
type SubscriptionStore struct {
	db      DB
	timeout time.Duration
}

// NewSubscriptionStore returns a store whose statements are each bounded by
// timeout. A zero timeout leaves deadlines to the caller's context.
func NewSubscriptionStore(db DB, timeout time.Duration) *SubscriptionStore {
	return &SubscriptionStore{db: db, timeout: timeout}
}

func (s *SubscriptionStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Begin opens the transaction that a subscribe request writes through.
func (s *SubscriptionStore) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return tx, nil
}

// InsertPendingSubscriber creates a pending_confirmation row inside tx and
// returns it. A second row for the same email yields domain.ErrDuplicateEmail.
func (s *SubscriptionStore) InsertPendingSubscriber(ctx context.Context, tx pgx.Tx, sub domain.NewSubscriber) (*domain.Subscriber, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := &domain.Subscriber{
		ID:           uuid.New(),
		Email:        sub.Email.String(),
		Name:         sub.Name.String(),
		SubscribedAt: time.Now().UTC(),
		Status:       domain.StatusPendingConfirmation,
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO subscriptions (id, email, name, subscribed_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`, row.ID, row.Email, row.Name, row.SubscribedAt, string(row.Status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("inserting subscriber: %w", err)
	}
	return row, nil
}

func (s *SubscriptionStore) StoreToken(ctx context.Context, tx pgx.Tx, subscriberID uuid.UUID, token string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := tx.Exec(ctx, `
		INSERT INTO subscription_tokens (subscription_token, subscriber_id)
		VALUES ($1, $2)
	`, token, subscriberID)
	if err != nil {
		return fmt.Errorf("storing subscription token: %w", err)
	}
	return nil
}

// SubscriberIDByToken resolves a confirmation token. The bool is false when
// no subscriber holds the token.
func (s *SubscriptionStore) SubscriberIDByToken(ctx context.Context, token string) (uuid.UUID, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
		SELECT subscriber_id FROM subscription_tokens
		WHERE subscription_token = $1
	`, token).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("looking up subscription token: %w", err)
	}
	return id, true, nil
}

// ConfirmSubscriber marks the subscriber confirmed. Confirming twice is not an error.
func (s *SubscriptionStore) ConfirmSubscriber(ctx context.Context, subscriberID uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		UPDATE subscriptions SET status = $1
		WHERE id = $2
	`, string(domain.StatusConfirmed), subscriberID)
	if err != nil {
		return fmt.Errorf("confirming subscriber: %w", err)
	}
	return nil
}

// ConfirmedSubscriberEmails returns the raw stored address of every
// confirmed subscriber. Callers re-validate each one before sending.
func (s *SubscriptionStore) ConfirmedSubscriberEmails(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT email FROM subscriptions
		WHERE status = $1
		ORDER BY subscribed_at
	`, string(domain.StatusConfirmed))
	if err != nil {
		return nil, fmt.Errorf("querying confirmed subscribers: %w", err)
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scanning confirmed subscriber: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating confirmed subscribers: %w", err)
	}

	return emails, nil
}

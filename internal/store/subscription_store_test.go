package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Priya8975/newsletter-delivery-system/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

func newMockStore(t *testing.T) (*SubscriptionStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewSubscriptionStore(mock, 0), mock
}

func mustNewSubscriber(t *testing.T, name, email string) domain.NewSubscriber {
	t.Helper()
	sub, err := domain.ParseNewSubscriber(name, email)
	if err != nil {
		t.Fatalf("invalid test subscriber: %v", err)
	}
	return sub
}

func TestInsertPendingSubscriber(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "success"},
		{
			name:    "unique violation maps to duplicate email",
			execErr: &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			wantErr: domain.ErrDuplicateEmail,
		},
		{
			name:    "other failure is a storage error",
			execErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			ctx := context.Background()

			mock.ExpectBegin()
			exec := mock.ExpectExec("INSERT INTO subscriptions").
				WithArgs(pgxmock.AnyArg(), "ada@example.com", "Ada Lovelace", pgxmock.AnyArg(), "pending_confirmation")
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			tx, err := store.Begin(ctx)
			if err != nil {
				t.Fatalf("begin: %v", err)
			}

			row, err := store.InsertPendingSubscriber(ctx, tx, mustNewSubscriber(t, "Ada Lovelace", "ada@example.com"))
			switch {
			case tt.execErr == nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if row.ID == uuid.Nil {
					t.Error("expected a generated subscriber id")
				}
				if row.Email != "ada@example.com" || row.Name != "Ada Lovelace" {
					t.Errorf("unexpected row: %+v", row)
				}
				if row.Status != domain.StatusPendingConfirmation || row.SubscribedAt.IsZero() {
					t.Errorf("expected a pending row with a subscription time, got %+v", row)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			default:
				if err == nil || errors.Is(err, domain.ErrDuplicateEmail) {
					t.Errorf("expected a storage error, got %v", err)
				}
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestStoreToken(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO subscription_tokens").
		WithArgs("abcdefghijklmnopqrstuvwxy", id).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.StoreToken(ctx, tx, id, "abcdefghijklmnopqrstuvwxy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSubscriberIDByToken(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		setup     func(mock pgxmock.PgxPoolIface)
		wantFound bool
		wantErr   bool
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
					WithArgs("token").
					WillReturnRows(pgxmock.NewRows([]string{"subscriber_id"}).AddRow(id.String()))
			},
			wantFound: true,
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
					WithArgs("token").
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "query failure",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT subscriber_id FROM subscription_tokens").
					WithArgs("token").
					WillReturnError(errors.New("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			tt.setup(mock)

			got, found, err := store.SubscriberIDByToken(context.Background(), "token")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tt.wantFound {
				t.Errorf("found = %v, want %v", found, tt.wantFound)
			}
			if tt.wantFound && got != id {
				t.Errorf("id = %s, want %s", got, id)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestConfirmSubscriber_Idempotent(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	// The second update touches a row that is already confirmed.
	mock.ExpectExec("UPDATE subscriptions SET status").
		WithArgs("confirmed", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE subscriptions SET status").
		WithArgs("confirmed", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	for i := 0; i < 2; i++ {
		if err := store.ConfirmSubscriber(context.Background(), id); err != nil {
			t.Fatalf("confirm #%d: unexpected error: %v", i+1, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestConfirmedSubscriberEmails(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT email FROM subscriptions").
		WithArgs("confirmed").
		WillReturnRows(pgxmock.NewRows([]string{"email"}).
			AddRow("a@x.com").
			AddRow("not-an-email").
			AddRow("b@x.com"))

	emails, err := store.ConfirmedSubscriberEmails(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a@x.com", "not-an-email", "b@x.com"}
	if len(emails) != len(want) {
		t.Fatalf("expected %d emails, got %d", len(want), len(emails))
	}
	for i := range want {
		if emails[i] != want[i] {
			t.Errorf("emails[%d] = %q, want %q", i, emails[i], want[i])
		}
	}
}

func TestConfirmedSubscriberEmails_Empty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT email FROM subscriptions").
		WithArgs("confirmed").
		WillReturnRows(pgxmock.NewRows([]string{"email"}))

	emails, err := store.ConfirmedSubscriberEmails(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emails == nil || len(emails) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", emails)
	}
}

func TestSubscriptionMetrics(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("FROM subscriptions").
		WithArgs("pending_confirmation", "confirmed").
		WillReturnRows(pgxmock.NewRows([]string{"pending", "confirmed"}).AddRow(int64(1), int64(3)))
	mock.ExpectQuery("FROM subscription_tokens").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(5)))

	m, err := store.SubscriptionMetrics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.PendingSubscribers != 1 || m.ConfirmedSubscribers != 3 || m.TokensIssued != 5 {
		t.Errorf("unexpected metrics: %+v", m)
	}
	if m.ConfirmationRate != 75 {
		t.Errorf("ConfirmationRate = %v, want 75", m.ConfirmationRate)
	}
}

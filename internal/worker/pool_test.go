package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Priya8975/newsletter-delivery-system/internal/email"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
	calls   atomic.Int32
}

func (s *recordingSender) Send(ctx context.Context, msg email.Message) error {
	s.calls.Add(1)
	if s.failFor[msg.To] {
		return errors.New("mailbox unavailable")
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg.To)
	s.mu.Unlock()
	return nil
}

type blockingSender struct{}

func (blockingSender) Send(ctx context.Context, _ email.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeliverer_Deliver(t *testing.T) {
	sender := &recordingSender{failFor: map[string]bool{"bad@example.com": true}}
	d := NewDeliverer(sender, time.Second, discardLogger())

	if err := d.Deliver(context.Background(), email.Message{To: "ok@example.com"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := d.Deliver(context.Background(), email.Message{To: "bad@example.com"}); err == nil {
		t.Error("expected error for failing recipient")
	}
	if got := sender.calls.Load(); got != 2 {
		t.Errorf("expected 2 send calls, got %d", got)
	}
}

func TestDeliverer_Timeout(t *testing.T) {
	d := NewDeliverer(blockingSender{}, 20*time.Millisecond, discardLogger())

	err := d.Deliver(context.Background(), email.Message{To: "slow@example.com"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestNewDeliverer_DefaultTimeout(t *testing.T) {
	d := NewDeliverer(&recordingSender{}, 0, discardLogger())
	if d.timeout != defaultSendTimeout {
		t.Errorf("timeout = %v, want %v", d.timeout, defaultSendTimeout)
	}
}

func TestPool_DeliversEveryMessage(t *testing.T) {
	sender := &recordingSender{failFor: map[string]bool{"c@example.com": true}}
	pool := NewPool(3, NewDeliverer(sender, time.Second, discardLogger()), discardLogger())
	pool.Start(context.Background())

	recipients := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com", "e@example.com"}
	for _, r := range recipients {
		pool.Submit(email.Message{To: r})
	}
	results := pool.Stop()

	if len(results) != len(recipients) {
		t.Fatalf("expected %d results, got %d", len(recipients), len(results))
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if r.Recipient != "c@example.com" {
				t.Errorf("unexpected failure for %s", r.Recipient)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestPool_CancelledContextDrains(t *testing.T) {
	sender := &recordingSender{}
	pool := NewPool(1, NewDeliverer(sender, time.Second, discardLogger()), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pool.Start(ctx)

	for i := 0; i < 10; i++ {
		pool.Submit(email.Message{To: "x@example.com"})
	}
	results := pool.Stop()

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.Err)
		}
	}
	if sender.calls.Load() != 0 {
		t.Errorf("sender should not be called after cancellation")
	}
}

func TestNewPool_MinimumOneWorker(t *testing.T) {
	pool := NewPool(0, NewDeliverer(&recordingSender{}, time.Second, discardLogger()), discardLogger())
	if pool.numWorkers != 1 {
		t.Errorf("numWorkers = %d, want 1", pool.numWorkers)
	}
}

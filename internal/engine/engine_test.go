package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Priya8975/newsletter-delivery-system/internal/email"
	"github.com/Priya8975/newsletter-delivery-system/internal/worker"
)

// fakeSender records every message and fails for the configured recipients.
type fakeSender struct {
	mu      sync.Mutex
	sent    []email.Message
	failFor map[string]bool
	err     error
}

func (s *fakeSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.failFor[msg.To] {
		return errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.sent...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeliverer(s email.Sender) *worker.Deliverer {
	return worker.NewDeliverer(s, time.Second, testLogger())
}

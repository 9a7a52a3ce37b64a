package email

import (
	"context"
	"log/slog"
)

var _ Sender = (*LogSender)(nil)

// LogSender logs message metadata instead of sending. Bodies are never
// logged. Used for local development.
type LogSender struct {
	from   string
	logger *slog.Logger
}

func NewLogSender(from string, logger *slog.Logger) *LogSender {
	return &LogSender{from: from, logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("sending email (log)",
		"from", s.from,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

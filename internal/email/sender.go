package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Message is a single email with both an HTML and a plain-text body.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers one message. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const (
	ProviderSES  = "ses"
	ProviderSMTP = "smtp"
	ProviderLog  = "log"
)

// Config selects and configures the outbound transport.
type Config struct {
	Provider string
	From     string
	SES      SESConfig
	SMTP     SMTPConfig
}

// New builds the Sender named by cfg.Provider.
func New(cfg Config, logger *slog.Logger) (Sender, error) {
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("email sender address is required")
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderSES:
		return NewSES(cfg.From, cfg.SES)
	case ProviderSMTP:
		return NewSMTP(cfg.From, cfg.SMTP)
	case ProviderLog, "":
		logger.Warn("email provider is log, messages are logged and not delivered")
		return NewLogSender(cfg.From, logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

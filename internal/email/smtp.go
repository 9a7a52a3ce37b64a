package email

import (
	"context"
	"fmt"
	"time"

	mail "gopkg.in/mail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

var _ Sender = (*SMTPSender)(nil)

// SMTPSender sends multipart/alternative mail through an SMTP relay.
type SMTPSender struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTP(from string, cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}

	d := mail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	return &SMTPSender{dialer: d, from: from}, nil
}

// Send dials per message. The dial is not context aware, so Send returns
// early on cancellation and leaves the dial to finish in the background.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := s.buildMessage(msg)

	errc := make(chan error, 1)
	go func() {
		errc <- s.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("sending email to %s via smtp: %w", msg.To, ctx.Err())
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("sending email to %s via smtp: %w", msg.To, err)
		}
		return nil
	}
}

func (s *SMTPSender) buildMessage(msg Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)
	return m
}

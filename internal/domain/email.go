package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SubscriberEmail is an address that passed ParseSubscriberEmail.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail checks raw against the email grammar. Stored
// addresses are re-parsed at delivery time, so this is also the fan-out's
// per-recipient check.
func ParseSubscriberEmail(raw string) (SubscriberEmail, error) {
	if raw == "" {
		return SubscriberEmail{}, fmt.Errorf("%w: subscriber email is empty", ErrValidation)
	}
	if strings.TrimSpace(raw) != raw {
		return SubscriberEmail{}, fmt.Errorf("%w: %q has surrounding whitespace", ErrValidation, raw)
	}
	if err := validate.Var(raw, "email"); err != nil {
		return SubscriberEmail{}, fmt.Errorf("%w: %q is not a valid email address", ErrValidation, raw)
	}
	at := strings.LastIndexByte(raw, '@')
	if domainPart := raw[at+1:]; !strings.Contains(domainPart, ".") {
		return SubscriberEmail{}, fmt.Errorf("%w: %q has no top-level domain", ErrValidation, raw)
	}
	return SubscriberEmail{value: raw}, nil
}

func (e SubscriberEmail) String() string {
	return e.value
}

package domain

import "errors"

var (
	// ErrValidation wraps every rejection of client input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateEmail is returned when the email is already subscribed.
	ErrDuplicateEmail = errors.New("email is already subscribed")

	// ErrUnknownToken is returned when a confirmation token matches no subscriber.
	ErrUnknownToken = errors.New("unknown subscription token")
)

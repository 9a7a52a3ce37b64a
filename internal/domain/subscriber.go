package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the position of a subscriber in the double opt-in lifecycle.
// A subscriber starts pending and moves to confirmed exactly once.
type Status string

const (
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusConfirmed           Status = "confirmed"
)

type Subscriber struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Status       Status    `json:"status"`
}

// NewSubscriber is sign-up input that has passed validation and may be persisted.
type NewSubscriber struct {
	Name  SubscriberName
	Email SubscriberEmail
}

// ParseNewSubscriber validates raw form input. It never touches storage.
func ParseNewSubscriber(rawName, rawEmail string) (NewSubscriber, error) {
	name, err := ParseSubscriberName(rawName)
	if err != nil {
		return NewSubscriber{}, err
	}
	email, err := ParseSubscriberEmail(rawEmail)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Name: name, Email: email}, nil
}

package engine

import "errors"

var (
	// ErrMalformedToken is returned for a confirmation token that could not
	// have been issued by GenerateToken.
	ErrMalformedToken = errors.New("malformed subscription token")

	// ErrDispatch wraps failures of the outbound email transport.
	ErrDispatch = errors.New("email dispatch failed")
)

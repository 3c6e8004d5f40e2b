package main

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorizationDenied signals that Instagram redirected back with
	// an error instead of a code.
	ErrAuthorizationDenied      = errors.New("authorization denied")
	ErrMissingAuthorizationCode = errors.New("no authorization code received")
	ErrShortLivedExchangeFailed = errors.New("token exchange failed")
	ErrLongLivedExchangeFailed  = errors.New("long-lived exchange failed")
	ErrInvalidState             = errors.New("invalid state")
)

// ExchangeError is returned by every failing step of the callback flow.
// Payload holds the raw upstream body (or error code) for display.
type ExchangeError struct {
	Kind        error
	Payload     string
	Description string
}

func (e *ExchangeError) Error() string {
	switch {
	case e.Payload != "" && e.Description != "":
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Payload, e.Description)
	case e.Payload != "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Payload)
	default:
		return e.Kind.Error()
	}
}

func (e *ExchangeError) Unwrap() error {
	return e.Kind
}

func exchangeError(kind error, payload string) *ExchangeError {
	return &ExchangeError{Kind: kind, Payload: payload}
}

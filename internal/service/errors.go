// Package service holds the business rules of the swap board: request
// lifecycle, interests and notifications, moderation, feedback and
// profiles.  Every operation takes the caller's session explicitly and
// reports failures as one of the error kinds below.
package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Handlers map them to HTTP status codes with errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrLimitExceeded      = errors.New("limit exceeded")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidOperation   = errors.New("invalid operation")
)

// Error pairs an error kind with a message safe to show to the client.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the client-facing message of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return fallback
}

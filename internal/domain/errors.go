package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors raised by services and mapped to HTTP responses at the
// handler boundary.
var (
	ErrNotFound        = errors.New("not found")
	ErrCodeExpired     = errors.New("code expired")
	ErrInvalidCode     = errors.New("invalid code")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrForbidden       = errors.New("forbidden")
)

// ValidationError marks malformed or missing input. Handlers translate it to
// a 400 response carrying the message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

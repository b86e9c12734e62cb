package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when local validation rejects user input
// before any request is sent.
var ErrInvalidInput = errors.New("invalid input")

// InputError names the offending field of a rejected input.
type InputError struct {
	Field  string
	Reason string
}

// NewInputError builds an InputError.
func NewInputError(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

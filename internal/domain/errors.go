package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the API layer maps to specific responses.
var (
	ErrUnknownRubricItem   = errors.New("unknown rubric item")
	ErrNoPendingSuggestion = errors.New("no pending suggestion")
	ErrSessionNotStarted   = errors.New("session has not started")
	ErrUserDetailsRequired = errors.New("user details required")
)

// ValidationError reports a rejected user action. The operation that failed
// leaves state unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a named field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DecodeError reports a malformed or incomplete persisted session document
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode session: %s: %v", e.Message, e.Err)
	}
	return "decode session: " + e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

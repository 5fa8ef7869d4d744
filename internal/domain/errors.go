package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// QuotaKind names a quota-governed action.
type QuotaKind string

const (
	QuotaAgentCreation QuotaKind = "agent_creation"
	QuotaAPICall       QuotaKind = "api_call"
)

// QuotaError reports which quota was exhausted and at what limit.
type QuotaError struct {
	Kind  QuotaKind
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %s (limit %d)", e.Kind, e.Limit)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// NewQuotaError creates a QuotaError for the given kind and limit.
func NewQuotaError(kind QuotaKind, limit int) *QuotaError {
	return &QuotaError{Kind: kind, Limit: limit}
}

// TransitionError reports a rejected trace status transition.
type TransitionError struct {
	From TraceStatus
	To   TraceStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// NewTransitionError creates a TransitionError for the given statuses.
func NewTransitionError(from, to TraceStatus) *TransitionError {
	return &TransitionError{From: from, To: to}
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when an anonymous viewer attempts a write.
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")

	// ErrForbidden is returned when a viewer mutates an entity it does not own.
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// ErrInvalidPage is returned when the requested page is past the last one.
	ErrInvalidPage = errors.New("invalid page")
)

// ValidationError is a field-level input error. Field "detail" is used for
// errors that do not belong to a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CreateOutcome tags the result of a create-or-reject insert on a unique pair.
type CreateOutcome int

const (
	Created CreateOutcome = iota
	AlreadyExists
)

func (o CreateOutcome) String() string {
	if o == AlreadyExists {
		return "already_exists"
	}
	return "created"
}

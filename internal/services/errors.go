package services

import (
	"errors"
	"fmt"
)

var (
	ErrMissingParameters  = errors.New("missing parameters")
	ErrNoSearchParameters = errors.New("no search parameters")
	ErrEmptyField         = errors.New("field must not be empty")
	ErrNotFound           = errors.New("book not found")
	ErrInvalidDateFormat  = errors.New("invalid date format")
	ErrDuplicateISBN      = errors.New("duplicate isbn")
)

// FieldError ties a validation failure to the input field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// DuplicateISBNError reports the ISBN that collided with an existing record.
type DuplicateISBNError struct {
	ISBN string
}

func (e *DuplicateISBNError) Error() string {
	return fmt.Sprintf("book with ISBN %s already exists", e.ISBN)
}

func (e *DuplicateISBNError) Unwrap() error {
	return ErrDuplicateISBN
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("invalid listing data")
	ErrListingNotFound   = errors.New("listing not found")
	ErrForbidden         = errors.New("user not authorized to perform this action")
	ErrStorage           = errors.New("asset storage failure")
	ErrPersistence       = errors.New("listing persistence failure")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError tags err as an asset store failure while keeping its cause.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}

// PersistenceError tags err as a repository failure while keeping its cause.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}

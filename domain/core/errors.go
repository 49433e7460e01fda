package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrSnapshotNotFound = fmt.Errorf("%w: snapshot", ErrNotFound)
	ErrVariableNotFound = fmt.Errorf("%w: variable", ErrNotFound)

	// Validation errors
	ErrInvalidCodebook = errors.New("invalid codebook")
	ErrUnknownScheme   = errors.New("unknown color scheme")
	ErrUnknownOrder    = errors.New("unknown order mode")

	// Source errors
	ErrEmptySource       = errors.New("data source has no rows")
	ErrUnsupportedFormat = errors.New("unsupported data format")

	// Storage errors
	ErrStorageDisabled = errors.New("snapshot storage is not configured")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewCodebookError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidCodebook, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCodebook) ||
		errors.Is(err, ErrUnknownScheme) ||
		errors.Is(err, ErrUnknownOrder)
}

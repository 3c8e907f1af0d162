package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no record exists for the given identifier.
	ErrNotFound = errors.New("measurement not found")
	// ErrAccessDenied indicates that the record exists but belongs to someone else.
	ErrAccessDenied = errors.New("access denied: measurement belongs to another user")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports malformed, missing or out-of-range input.
type ValidationError struct {
	Field string
	Msg   string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failure reported by a store adapter.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors
var (
	// ErrNotFound is returned when a cue, device or message no longer exists
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when authentication is required
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied is returned when a role-gated action is attempted without privilege
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotInitialized is returned when the identity or store backend is not ready
	ErrNotInitialized = errors.New("backend not initialized")
)

// ImportValidationError reports a cue sheet that cannot be imported.
// The current event is never partially mutated when this is returned.
type ImportValidationError struct {
	Missing []string
	Reason  string
}

// Error implements the error interface
func (e *ImportValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("Required columns (%s) not found in the cue sheet.", strings.Join(e.Missing, ", "))
	}
	return "invalid cue sheet: " + e.Reason
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ImportValidationError) Unwrap() error {
	return ErrInvalidInput
}

// PersistenceError wraps a failed remote write or delete
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UserFriendlyError wraps an error with a user-friendly message
type UserFriendlyError struct {
	Err            error
	UserMessage    string
	HTTPStatusCode int
}

// Error implements the error interface
func (e *UserFriendlyError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

// Unwrap returns the underlying error
func (e *UserFriendlyError) Unwrap() error {
	return e.Err
}

// NewUserFriendlyError creates a new user-friendly error
func NewUserFriendlyError(err error, userMessage string, statusCode int) *UserFriendlyError {
	return &UserFriendlyError{
		Err:            err,
		UserMessage:    userMessage,
		HTTPStatusCode: statusCode,
	}
}

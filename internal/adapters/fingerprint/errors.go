package fingerprint

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure cases
var (
	// ErrInvalidOUI indicates the prefix is not of the form XX:XX:XX
	ErrInvalidOUI = errors.New("invalid OUI prefix")

	// ErrVendorNotFound indicates no vendor was found for the given prefix
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrRepositoryClosed indicates the repository has been closed
	ErrRepositoryClosed = errors.New("repository is closed")
)

// DatabaseError wraps database-specific errors with context
type DatabaseError struct {
	Op  string // Operation that failed (e.g., "lookup", "insert")
	Err error  // Underlying error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s failed: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// ValidationError wraps validation errors with the invalid value
type ValidationError struct {
	Field string // Field that failed validation
	Value string // Invalid value
	Err   error  // Underlying error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

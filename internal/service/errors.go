package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/store"
)

// Error handling principles:
// 1. Service methods return domain sentinel errors for expected conditions
// 2. Unexpected errors are wrapped in ServiceError with the failing operation
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to HTTP status codes

// ServiceError wraps errors from a service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "open_session", "submit_attempt")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewError returns a new ServiceError for operation.
func NewError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// expected lists the errors returned to callers as they are.
var expected = []error{
	domain.ErrConflict,
	domain.ErrInvalidState,
	domain.ErrBlocked,
	domain.ErrNotAwaitingCare,
	domain.ErrAlreadyAlive,
	domain.ErrInvalidToken,
	domain.ErrNothingDue,
	domain.ErrDailyLimit,
	domain.ErrUnknownLevel,
	domain.ErrInvalidCareKind,
	domain.ErrValidation,
	domain.ErrInvalidTimezone,
	store.ErrNotFound,
}

// IsExpected reports whether err is a condition the caller is meant to
// handle rather than a failure.
func IsExpected(err error) bool {
	for _, e := range expected {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Wrap returns err unchanged when it is expected or transient, and wraps it
// in a ServiceError otherwise.
func Wrap(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if IsExpected(err) || errors.Is(err, domain.ErrTransientIO) {
		return err
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return err
	}
	return NewError(operation, message, err)
}

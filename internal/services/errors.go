package services

import "errors"

var (
	// ErrNotFound is returned when no expense exists with the requested id.
	ErrNotFound = errors.New("expense not found")
	// ErrForbidden is returned when the expense exists but belongs to
	// another owner.
	ErrForbidden = errors.New("not authorized to access this expense")
)

// ValidationError reports a rejected input field. The message is safe to
// return to the caller verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

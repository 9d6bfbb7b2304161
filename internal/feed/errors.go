package feed

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("authentication required")
	// ErrNotFoundOrUnauthorized deliberately does not tell a missing entity
	// apart from one owned by someone else.
	ErrNotFoundOrUnauthorized = errors.New("not found or unauthorized")
)

// ValidationError reports missing or malformed input. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

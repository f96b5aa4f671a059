package service

import "errors"

var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("not found")
	ErrReaderNil      = errors.New("reader is nil")
	ErrValidation     = errors.New("invalid input")
	ErrInvalidState   = errors.New("invalid state")
	ErrConflict       = errors.New("document changed concurrently, retry")
	ErrStagingExpired = errors.New("staged upload not found or expired")
)

// StateError rejects an operation the version's lifecycle state does not allow.
// It matches ErrInvalidState with errors.Is.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return "invalid state: " + e.Reason
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

package services

import "fmt"

// Domain error kinds. Controllers map them to HTTP statuses; everything else
// surfaces as a StorageError.

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string { return e.msg }

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// AuthError covers both missing identity (401) and acting on someone else's
// resource (403).
type AuthError struct {
	msg       string
	Forbidden bool
}

func (e *AuthError) Error() string { return e.msg }

func NewAuthError(format string, args ...interface{}) error {
	return &AuthError{msg: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...interface{}) error {
	return &AuthError{msg: fmt.Sprintf(format, args...), Forbidden: true}
}

// StateError marks an operation that is illegal in the entity's current
// lifecycle state, including replayed decisions.
type StateError struct {
	msg string
}

func (e *StateError) Error() string { return e.msg }

func NewStateError(format string, args ...interface{}) error {
	return &StateError{msg: fmt.Sprintf(format, args...)}
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func newStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

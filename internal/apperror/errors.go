package apperror

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed or semantically invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a missing session, message, participant or group.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewNotFound(resource, format string, args ...interface{}) error {
	return &NotFoundError{Resource: resource, Message: fmt.Sprintf(format, args...)}
}

// ConflictError covers scheduling overlap, capacity exceeded, duplicate
// registration and not-yet-enterable rooms.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError indicates a role or ownership mismatch.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func NewForbidden(format string, args ...interface{}) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// StateError indicates an invalid lifecycle transition.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

func NewState(format string, args ...interface{}) error {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

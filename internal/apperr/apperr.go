// Package apperr defines the error kinds shared by every domain package.
//
// Domain code returns an *Error carrying one of the sentinel kinds below so
// that transport layers can classify failures with errors.Is without knowing
// which package produced them.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input. The caller can fix and resubmit.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a missing entity, or one outside the caller's scope.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks an operation the entity's lifecycle state forbids.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict marks a uniqueness violation or a lost concurrent update.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized marks missing or bad credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks valid credentials that lack access.
	ErrForbidden = errors.New("forbidden")
)

// Error pairs an error kind with a message that is safe to show to callers.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func InvalidState(format string, args ...any) error {
	return newError(ErrInvalidState, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return newError(ErrUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, format, args...)
}

// NotFound reports that the named entity does not exist, e.g. NotFound("invoice").
func NotFound(entity string) error {
	return newError(ErrNotFound, "%s not found", entity)
}

// Message returns the caller-facing message of the first *Error in err's
// chain, or fallback when err carries none.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}

	return fallback
}

// Package apperr defines the error taxonomy shared by the store, governance
// and scoring layers. Every error carries a stable kind tag plus a detail string.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the stable, machine-readable error tag.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindRateLimited      Kind = "RATE_LIMITED"
)

// Error is the concrete error type returned across the core.
type Error struct {
	Kind   Kind
	Detail string
	Err    error

	// Field names the offending input field for INVALID_INPUT errors.
	Field string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below can be
// used with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrRateLimited      = &Error{Kind: KindRateLimited}
)

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

// InvalidInput reports a missing or malformed required field.
func InvalidInput(field, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Detail: fmt.Sprintf(format, args...)}
}

func StoreUnavailable(err error, format string, args ...any) *Error {
	return &Error{Kind: KindStoreUnavailable, Detail: fmt.Sprintf(format, args...), Err: err}
}

func RateLimited(err error, format string, args ...any) *Error {
	return &Error{Kind: KindRateLimited, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Package apperr defines the failure kinds surfaced by the post and comment
// layer. Every error that leaves the gateway is an *Error so callers can
// branch on Kind without knowing which store produced it.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure.
type Kind string

const (
	// KindNotFound means no document matched. Point reads treat this as a
	// normal outcome; updates treat it as a failure.
	KindNotFound Kind = "NOT_FOUND"

	// KindValidation is a client-side rejection made before any store call.
	KindValidation Kind = "VALIDATION"

	// KindTransport covers anything the store call itself reported.
	KindTransport Kind = "TRANSPORT"
)

// Sentinels for errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("store request failed")
)

// Error is a normalized failure with a human-readable message.
type Error struct {
	Kind Kind

	// Op names the operation that failed, e.g. "update post".
	Op string

	// Message is what gets shown to a user.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

// NotFound builds a KindNotFound error.
func NotFound(op, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Transport wraps a store failure. Only the cause's message is kept; the
// provider error value itself is dropped.
func Transport(op string, cause error) *Error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindTransport, Op: op, Message: fmt.Sprintf("failed to %s: %s", op, msg)}
}

// KindOf returns the kind of err, or KindTransport for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// Message returns the string stored in error slots. A nil error yields "".
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unknown error"
}

// Package errdefs defines the error codes surfaced by the planner and the
// pagination engine, and the HTTP status each one maps to.
package errdefs

import (
	"fmt"
	"net/http"

	"emperror.dev/errors"
)

// Code is a stable, machine-readable error identifier returned to clients.
type Code string

const (
	CodeNotFound        Code = "NotFound"
	CodeAccessDenied    Code = "AccessDenied"
	CodeInvalidRange    Code = "InvalidRange"
	CodeInvalidCursor   Code = "InvalidCursor"
	CodeInvalidRequest  Code = "InvalidRequest"
	CodeOperationFailed Code = "OperationFailed"

	// Codes raised by the HTTP layer before a request reaches the planner.
	CodeUnauthorized Code = "Unauthorized"
	CodeRateLimited  Code = "RateLimited"
)

// Status returns the HTTP status code used when rendering an error of this
// code.
func (c Code) Status() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAccessDenied:
		return http.StatusForbidden
	case CodeInvalidRange, CodeInvalidCursor, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Code alongside a client safe message. The wrapped cause is
// kept for logging and is never rendered to clients.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New returns an error with the given code and message.
func New(code Code, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Code: code, Message: fmt.Sprintf(format, args...)})
}

// Wrap attaches a code and message to an existing error. Wrapping a nil error
// returns nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Code: code, Message: message, cause: err})
}

func NotFound(format string, args ...interface{}) error {
	return New(CodeNotFound, format, args...)
}

func AccessDenied(format string, args ...interface{}) error {
	return New(CodeAccessDenied, format, args...)
}

func InvalidRange(format string, args ...interface{}) error {
	return New(CodeInvalidRange, format, args...)
}

func InvalidCursor(format string, args ...interface{}) error {
	return New(CodeInvalidCursor, format, args...)
}

func InvalidRequest(format string, args ...interface{}) error {
	return New(CodeInvalidRequest, format, args...)
}

// As returns the first *Error in the chain of err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or CodeOperationFailed for errors
// that were never classified.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeOperationFailed
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// Classify leaves coded errors untouched and wraps everything else as an
// OperationFailed error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(err, CodeOperationFailed, "the operation could not be completed")
}

// Package apperr carries the HTTP-facing error taxonomy. Handlers and
// services return *Error values; the central responder turns them into
// status codes and JSON bodies.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindNotFound           Kind = "not_found"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindTooManyRequests    Kind = "too_many_requests"
	KindInternal           Kind = "internal"
)

// ErrTokenExpired marks a token that verified but is past its expiry.
// The responder always answers 401 for it.
var ErrTokenExpired = errors.New("token expired")

// Error is a failure with the status it should be reported under.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithStatus returns a copy reported under a different status code.
func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

// Wrap returns a copy carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

func newError(kind Kind, status int, msg string) *Error {
	return &Error{Kind: kind, Status: status, Message: msg}
}

func Validation(msg string) *Error {
	return newError(KindValidation, http.StatusBadRequest, msg)
}

func Conflict(msg string) *Error {
	return newError(KindConflict, http.StatusBadRequest, msg)
}

func InvalidCredentials(msg string) *Error {
	return newError(KindInvalidCredentials, http.StatusBadRequest, msg)
}

func NotFound(msg string) *Error {
	return newError(KindNotFound, http.StatusNotFound, msg)
}

func Unauthorized(msg string) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, msg)
}

func Forbidden(msg string) *Error {
	return newError(KindForbidden, http.StatusForbidden, msg)
}

func TooManyRequests(msg string) *Error {
	return newError(KindTooManyRequests, http.StatusTooManyRequests, msg)
}

// Internal hides err behind the generic server error message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Server error", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf mirrors KindOf for status codes. Expired tokens are always 401.
func StatusOf(err error) int {
	if errors.Is(err, ErrTokenExpired) {
		return http.StatusUnauthorized
	}
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Package apperr carries the error taxonomy shared by the live and REST
// surfaces. Every failure that reaches a client is an *Error with a Kind.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind string

const (
	KindAuth               Kind = "auth_error"
	KindForbidden          Kind = "forbidden"
	KindValidation         Kind = "validation_error"
	KindRateLimited        Kind = "rate_limited"
	KindNotFound           Kind = "not_found"
	KindTransient          Kind = "transient"
	KindFatal              Kind = "fatal"
	KindTooManyConnections Kind = "too_many_connections"
)

// accessDenied is the only message a Forbidden room check returns.
const accessDenied = "access denied"

type Error struct {
	Kind       Kind
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Auth(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

// Forbidden never names the room or the reason, so callers cannot probe
// room existence.
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: accessDenied}
}

func ForbiddenAction(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func RateLimited(retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: "rate limit exceeded", RetryAfter: retryAfter}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Transient(msg string, err error) *Error {
	return &Error{Kind: KindTransient, Message: msg, Err: err}
}

func Fatal(msg string, err error) *Error {
	return &Error{Kind: KindFatal, Message: msg, Err: err}
}

func TooManyConnections(limit int) *Error {
	return &Error{Kind: KindTooManyConnections, Message: fmt.Sprintf("connection limit of %d reached", limit)}
}

// FromStore classifies a persistence failure. Anything already classified
// passes through, everything else is safe to retry.
func FromStore(msg string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient(msg+": timed out", err)
	}
	return Transient(msg, err)
}

// KindOf returns the kind of err, or KindFatal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindFatal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage is safe to show to the originating client.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

func RetryAfterOf(err error) time.Duration {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.RetryAfter
	}
	return 0
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited, KindTooManyConnections:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

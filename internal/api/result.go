package api

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindAuth      ErrorKind = "auth"
	KindNotFound  ErrorKind = "not_found"
	KindServer    ErrorKind = "server"
	KindDecode    ErrorKind = "decode"
)

// Error is the normalized failure of a remote call. Message is always human-readable and
// safe to show as-is.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string

	cause error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Result is either a payload (Ok) or a normalized *Error (Fail).
type Result[T any] struct {
	data T
	err  *Error
}

func Ok[T any](v T) Result[T] { return Result[T]{data: v} }

func Fail[T any](err *Error) Result[T] {
	if err == nil {
		err = &Error{Kind: KindServer, Message: "request failed"}
	}
	return Result[T]{err: err}
}

func (r Result[T]) OK() bool { return r.err == nil }

// Data returns the payload; the zero value when the result is a failure.
func (r Result[T]) Data() T { return r.data }

// Err returns nil for a success, otherwise the *Error.
func (r Result[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r Result[T]) Unwrap() (T, error) { return r.data, r.Err() }

// Ack is the body of endpoints that only confirm an action.
type Ack struct {
	Message string `json:"message,omitempty"`
}

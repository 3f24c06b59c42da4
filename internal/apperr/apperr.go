// Package apperr is the application error taxonomy. Every failure that
// crosses a service boundary is one of four kinds, and the route layer
// maps each kind to exactly one HTTP status. Code below the route layer
// never touches status codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindValidation: malformed or empty required input, including a
	// client trying to open a direct conversation. Maps to 400.
	KindValidation Kind = iota + 1
	// KindNotFound: conversation, project, employee or user absent. Maps to 404.
	KindNotFound
	// KindForbidden: non-participant access or cross-tenant project
	// access. Maps to 403.
	KindForbidden
	// KindStore: unexpected persistence failure. Maps to 500; the raw
	// message is surfaced to the client (internal tool trade-off).
	KindStore
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return e.Msg + ": " + e.Err.Error()
		}
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

// Store wraps an unexpected persistence error. msg gives the operation
// that failed; err carries the driver detail.
func Store(msg string, err error) error {
	return &Error{Kind: KindStore, Msg: msg, Err: err}
}

// KindOf extracts the kind of err, or 0 when err is not an application
// error. Unknown errors are treated as store failures by the route layer.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

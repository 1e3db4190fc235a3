// Package apperr classifies failures into a small set of kinds and maps each
// kind to an HTTP status. Handlers and middleware return *Error values (or
// wrap them) and the echo error handler turns them into responses, so no
// layer below the router needs to know about status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the class of a failure.
type Kind int

const (
	KindInternal     Kind = iota // anything unclassified; never leaks its message
	KindUnauthorized             // missing or invalid credential
	KindNotFound                 // identifier does not resolve to a record
	KindOwnership                // principal does not own the record
	KindValidation               // request body failed validation
	KindBadParams                // required request member missing or of the wrong shape
	KindInvalidID                // identifier is not in the store's id format
	KindConflict                 // uniqueness violation (e.g. email already taken)
)

// String returns the snake_case name used in JSON error bodies.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindOwnership:
		return "ownership"
	case KindValidation:
		return "validation"
	case KindBadParams:
		return "bad_params"
	case KindInvalidID:
		return "invalid_id"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status code.
//
// KindOwnership maps to 401 rather than 403. Existing clients depend on that
// status, so it is kept on purpose.
func Status(k Kind) int {
	switch k {
	case KindUnauthorized, KindOwnership:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadParams, KindInvalidID:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a client-safe message.
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
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind with a client-safe message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err. The message is what clients see; err is kept for logs.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Message returns the client-safe message for err. Internal errors always
// yield a generic message.
func Message(err error) string {
	var ae *Error
	if !errors.As(err, &ae) || ae.Kind == KindInternal {
		return "internal server error"
	}
	if ae.Msg != "" {
		return ae.Msg
	}
	return ae.Kind.String()
}

// Convenience constructors used by handlers.

func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }

func NotFound(msg string) *Error { return New(KindNotFound, msg) }

func Ownership(msg string) *Error { return New(KindOwnership, msg) }

func BadParams(msg string) *Error { return New(KindBadParams, msg) }

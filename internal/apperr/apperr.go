// internal/apperr/apperr.go
//
// Classified application errors.
//
// Context
// -------
// Stores, validators, and auth helpers return plain Go errors.  When an error
// must reach the client as something other than a 500, it is wrapped in
// *Error with a Kind.  The HTTP boundary (`response.FromError`) is the only
// code that turns a Kind into a status code and envelope.
//
// Notes
// -----
// • Kind values are stable strings so they can be logged as-is.
// • Fields is populated only for KindValidation.
// • Oxford commas, two spaces after periods.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the response boundary.
type Kind string

const (
	KindInvalid      Kind = "invalid"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// Error is a classified application error.
type Error struct {
	Kind       Kind
	Message    string
	Resource   string              // NotFound only
	Identifier string              // NotFound only
	Fields     map[string][]string // Validation only
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Invalid reports a malformed request that is not tied to specific fields.
func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

// Validation carries per-field messages keyed by the public field name.
func Validation(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Unauthorized reports missing or bad credentials.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound names the missing resource and, optionally, its identifier.
func NotFound(resource, identifier string) *Error {
	return &Error{
		Kind:       KindNotFound,
		Message:    resource + " not found",
		Resource:   resource,
		Identifier: identifier,
	}
}

// Conflict reports a uniqueness or state clash, e.g. a duplicate email.
func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// Wrap classifies an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As is a shorthand for errors.As with *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

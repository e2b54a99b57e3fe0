package errors

import (
	"fmt"
)

// Kind classifies an error.
type Kind string

const (
	KindUnregisteredType Kind = "unregistered_type"
	KindNetworkFailure   Kind = "network_failure"
	KindRecordNotFound   Kind = "record_not_found"
	KindInvalidArgument  Kind = "invalid_argument"
	KindConfig           Kind = "config"
)

// Error is a structured error with a code, kind and optional cause.
type Error struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Kind is the error classification used for errors.Is matching.
	Kind Kind

	// Message is a short description of the error.
	Message string

	// Detail is a longer, call-site specific explanation.
	Detail string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error of the same kind.
// A target without a kind never matches.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

// WithDetail sets the call-site explanation.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithDetailf sets a formatted call-site explanation.
func (e *Error) WithDetailf(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:    code,
		Kind:    template.Kind,
		Message: template.Message,
	}
}

// KindError returns a bare error of the given kind, suitable as an
// errors.Is target or exported sentinel.
func KindError(kind Kind) *Error {
	for code, t := range registry {
		if t.Kind == kind {
			return &Error{Code: code, Kind: kind, Message: t.Message}
		}
	}
	return &Error{Kind: kind, Message: string(kind)}
}

// FromError wraps a standard error under the given code.
// Existing *Error values are returned unchanged.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return New(code).Wrap(err)
}

// Package apierrors implements the error taxonomy of spec §7: a small set
// of sentinel-wrapped error types that pipeline workers and the gateway
// switch on to decide retry/ack/HTTP-status behavior.
package apierrors

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindNotFound          Kind = "NotFound"
	KindBackendUnavailable Kind = "BackendUnavailable"
	KindMalformedDocument Kind = "MalformedDocument"
	KindAnalysisError     Kind = "AnalysisError"
	KindRenderError       Kind = "RenderError"
)

// Error is the concrete type behind every sentinel below.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, apierrors.NotFound) style sentinel checks by
// comparing Kind rather than identity, since every call site constructs a
// fresh *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels usable with errors.Is; only Kind is compared.
var (
	NotFound           = &Error{Kind: KindNotFound}
	Validation         = &Error{Kind: KindValidation}
	BackendUnavailable = &Error{Kind: KindBackendUnavailable}
	MalformedDocument  = &Error{Kind: KindMalformedDocument}
	AnalysisErrorKind  = &Error{Kind: KindAnalysisError}
	RenderErrorKind    = &Error{Kind: KindRenderError}
)

func newf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NewValidation builds a ValidationError.
func NewValidation(format string, args ...interface{}) error {
	return newf(KindValidation, nil, format, args...)
}

// NewNotFound builds a NotFound error.
func NewNotFound(format string, args ...interface{}) error {
	return newf(KindNotFound, nil, format, args...)
}

// NewBackendUnavailable wraps a transient infrastructure fault.
func NewBackendUnavailable(cause error, format string, args ...interface{}) error {
	return newf(KindBackendUnavailable, cause, format, args...)
}

// NewMalformedDocument builds a MalformedDocument error ("Parsing error: {detail}").
func NewMalformedDocument(format string, args ...interface{}) error {
	return newf(KindMalformedDocument, nil, "Parsing error: "+format, args...)
}

// NewAnalysisError builds an AnalysisError ("Analysis error: {detail}").
func NewAnalysisError(format string, args ...interface{}) error {
	return newf(KindAnalysisError, nil, "Analysis error: "+format, args...)
}

// NewRenderError builds a RenderError.
func NewRenderError(cause error, format string, args ...interface{}) error {
	return newf(KindRenderError, cause, format, args...)
}

// KindOf extracts the Kind of err if it (transitively) wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Package errors provides the typed error implementation used
// throughout the SCIM target API.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error code constants
const (
	EInternal        = "internal error"
	ENotImplemented  = "not implemented"
	ENotFound        = "not found"
	EConflict        = "conflict"
	EOptimisticLock  = "optimistic lock"
	EInvalid         = "invalid"
	EForbidden       = "forbidden"
	ETooManyRequests = "too many requests"
	EUnauthorized    = "unauthorized"
	ETooLarge        = "request too large"
)

// SCIM error type constants (RFC 7644 section 3.12). An error may carry
// one of these to override the default scimType derived from its code.
const (
	SCIMTypeUniqueness      = "uniqueness"
	SCIMTypeInvalidFilter   = "invalidFilter"
	SCIMTypeInvalidSyntax   = "invalidSyntax"
	SCIMTypeInvalidPath     = "invalidPath"
	SCIMTypeNoTarget        = "noTarget"
	SCIMTypeInvalidValue    = "invalidValue"
	SCIMTypeMutability      = "mutability"
	SCIMTypeVersionMismatch = "versionMismatch"
	SCIMTypeTooMany         = "tooMany"
	SCIMTypeSensitive       = "sensitive"
	SCIMTypeInvalidToken    = "invalidToken"
)

// APIError is the internal error implementation for the SCIM target API.
type APIError struct {
	err      error
	code     string
	scimType string
	message  string
}

// Option is used to configure an APIError. Options may be passed as
// trailing arguments to New and Wrap.
type Option func(*APIError)

// WithErrorCode sets the error code.
func WithErrorCode(code string) Option {
	return func(e *APIError) {
		e.code = code
	}
}

// WithSCIMType sets the scimType reported in the SCIM error envelope.
func WithSCIMType(scimType string) Option {
	return func(e *APIError) {
		e.scimType = scimType
	}
}

// WithSpan records the error on the given trace span.
func WithSpan(span trace.Span) Option {
	return func(e *APIError) {
		span.RecordError(e)
		span.SetStatus(codes.Error, e.Error())
	}
}

// New returns a new APIError with the message field set. The code
// defaults to EInternal unless a WithErrorCode option is supplied.
func New(format string, a ...any) *APIError {
	options, a := findOptions(a)
	resultError := &APIError{
		code:    EInternal,
		message: fmt.Sprintf(format, a...),
	}
	for _, o := range options {
		o(resultError)
	}
	return resultError
}

// Wrap returns a new APIError which wraps an existing error.
func Wrap(err error, format string, a ...any) *APIError {
	options, a := findOptions(a)
	resultError := &APIError{
		message: fmt.Sprintf(format, a...),
		err:     err,
	}
	for _, o := range options {
		o(resultError)
	}
	return resultError
}

// findOptions extracts Option values from a list of format arguments.
func findOptions(a []any) ([]Option, []any) {
	var options []Option
	var others []any

	for _, arg := range a {
		if candidate, ok := arg.(Option); ok {
			options = append(options, candidate)
			continue
		}
		others = append(others, arg)
	}

	return options, others
}

// Error implements the error interface by writing out the recursive messages.
func (e *APIError) Error() string {
	if e.message != "" && e.err != nil {
		var b strings.Builder
		b.WriteString(e.message)
		b.WriteString(": ")
		b.WriteString(e.err.Error())
		return b.String()
	} else if e.message != "" {
		return e.message
	} else if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("<%s>", e.code)
}

// Unwrap returns the wrapped error, if any.
func (e *APIError) Unwrap() error {
	return e.err
}

// ErrorCode returns the code of the root error, if available; otherwise returns EInternal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	e, ok := unwrapAPIError(err)
	if !ok {
		return EInternal
	}

	if e.code != "" {
		return e.code
	}

	if e.err != nil {
		return ErrorCode(e.err)
	}

	return EInternal
}

// SCIMType returns the scimType carried by the error, or the empty
// string if none was set.
func SCIMType(err error) string {
	e, ok := unwrapAPIError(err)
	if !ok {
		return ""
	}

	if e.scimType != "" {
		return e.scimType
	}

	if e.err != nil {
		return SCIMType(e.err)
	}

	return ""
}

// ErrorMessage returns the messages associated with the error
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	e, ok := unwrapAPIError(err)
	if !ok {
		return "An internal error has occurred."
	}

	if e.message != "" {
		// e.Error() returns the message and the wrapped error
		return e.Error()
	}

	if e.err != nil {
		return ErrorMessage(e.err)
	}

	return "An internal error has occurred."
}

// IsContextCanceledError returns true if the error is a context.Canceled error
func IsContextCanceledError(err error) bool {
	return errors.Is(err, context.Canceled)
}

func unwrapAPIError(err error) (*APIError, bool) {
	for {
		if err == nil {
			return nil, false
		}

		apiErr, ok := err.(*APIError)
		if ok {
			return apiErr, true
		}

		err = errors.Unwrap(err)
	}
}

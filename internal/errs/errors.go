// Package errs defines the gateway error taxonomy. Errors are classified
// once, where the underlying failure is known, and carried unchanged to the
// HTTP boundary.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindAuthentication
	KindIdempotencyConflict
	KindGateway
	KindCircuitOpen
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindAuthentication:
		return "authentication_error"
	case KindIdempotencyConflict:
		return "idempotency_conflict"
	case KindGateway:
		return "gateway_error"
	case KindCircuitOpen:
		return "circuit_open"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindIdempotencyConflict:
		return http.StatusConflict
	case KindGateway:
		return http.StatusBadGateway
	case KindCircuitOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a stable machine-readable code plus a human message. The
// wrapped cause stays internal; it is logged, never returned to tenants.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func Authentication(code, message string) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: message}
}

func Gateway(code, message string, err error) *Error {
	return &Error{Kind: KindGateway, Code: code, Message: message, Err: err}
}

func CircuitOpen(code, message string) *Error {
	return &Error{Kind: KindCircuitOpen, Code: code, Message: message}
}

func Internal(code, message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: code, Message: message, Err: err}
}

// From extracts the taxonomy error from err, wrapping unclassified errors as
// internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "unexpected internal error", Err: err}
}

package providers

import "fmt"

// FailureClass is decided once, where the transport error or status code is
// known, and never re-derived downstream.
type FailureClass int

const (
	FailureTimeout FailureClass = iota
	FailureTransport
	FailureClient
	FailureServer
	FailureRateLimited
)

func (c FailureClass) String() string {
	switch c {
	case FailureTimeout:
		return "timeout"
	case FailureTransport:
		return "transport"
	case FailureClient:
		return "client"
	case FailureServer:
		return "server"
	case FailureRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error is a classified provider call failure.
type Error struct {
	Provider string
	Class    FailureClass
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s failure (status %d): %v", e.Provider, e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Provider, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure may succeed on a later attempt:
// timeouts, transport faults, 5xx and rate limiting. Other client errors are
// terminal.
func (e *Error) Retryable() bool {
	switch e.Class {
	case FailureTimeout, FailureTransport, FailureServer, FailureRateLimited:
		return true
	default:
		return false
	}
}

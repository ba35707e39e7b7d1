package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"payment-gateway/internal/errs"
)

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[errs.Kind]int{
		errs.KindValidation:          http.StatusBadRequest,
		errs.KindAuthentication:      http.StatusUnauthorized,
		errs.KindIdempotencyConflict: http.StatusConflict,
		errs.KindGateway:             http.StatusBadGateway,
		errs.KindCircuitOpen:         http.StatusServiceUnavailable,
		errs.KindInternal:            http.StatusInternalServerError,
	}

	for kind, want := range cases {
		require.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "validation_error", errs.KindValidation.String())
	require.Equal(t, "circuit_open", errs.KindCircuitOpen.String())
	require.Equal(t, "internal_error", errs.KindInternal.String())
	require.Equal(t, "internal_error", errs.Kind(99).String())
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := errs.Gateway("PROVIDER_CALL_FAILED", "provider call failed", cause)

	require.Contains(t, err.Error(), "PROVIDER_CALL_FAILED")
	require.Contains(t, err.Error(), "connection refused")
	require.ErrorIs(t, err, cause)
}

func TestFrom_ExtractsClassifiedError(t *testing.T) {
	original := errs.CircuitOpen("GATEWAY_UNAVAILABLE", "no provider available")
	wrapped := fmt.Errorf("processing payment: %w", original)

	require.Same(t, original, errs.From(wrapped))
}

func TestFrom_WrapsUnclassifiedAsInternal(t *testing.T) {
	cause := errors.New("boom")
	e := errs.From(cause)

	require.Equal(t, errs.KindInternal, e.Kind)
	require.Equal(t, "INTERNAL_ERROR", e.Code)
	require.ErrorIs(t, e, cause)
}

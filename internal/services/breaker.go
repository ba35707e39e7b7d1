package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/clockz"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/logging"
)

// CounterStore holds breaker failure counters keyed by (provider, window).
type CounterStore interface {
	IncrFailureCount(ctx context.Context, counterKey string, ttl time.Duration) (int64, error)
	FailureCount(ctx context.Context, counterKey string) (int64, error)
}

// CircuitBreaker counts provider failures in fixed time windows and reports
// a provider open once the current window reaches the threshold. Counters
// never decrement; pressure only ages out when the window rolls over.
// Holds no provider-selection logic, only the failure signal.
type CircuitBreaker struct {
	Store      CounterStore
	Clock      clockz.Clock
	Threshold  int
	Window     time.Duration
	CounterTTL time.Duration
	Logger     logging.Logger
}

func (b *CircuitBreaker) counterKey(providerID string) string {
	windowID := b.Clock.Now().Unix() / int64(b.Window.Seconds())
	return fmt.Sprintf("breaker:%s:%d", providerID, windowID)
}

// RecordFailure increments the current window's counter and reports whether
// the circuit is now open. Counts only need to be approximately correct; a
// concurrent off-by-one within a window is acceptable.
func (b *CircuitBreaker) RecordFailure(ctx context.Context, providerID string) (bool, error) {
	count, err := b.Store.IncrFailureCount(ctx, b.counterKey(providerID), b.CounterTTL)
	if err != nil {
		return false, errs.Internal("BREAKER_STORE_UNAVAILABLE", "failed to record provider failure", err)
	}

	open := count >= int64(b.Threshold)
	if count == int64(b.Threshold) {
		b.Logger.Error("circuit breaker opened", map[string]any{
			"provider": providerID,
			"failures": count,
			"window":   b.Window.String(),
		})
	}
	return open, nil
}

func (b *CircuitBreaker) FailureCount(ctx context.Context, providerID string) (int, error) {
	count, err := b.Store.FailureCount(ctx, b.counterKey(providerID))
	if err != nil {
		return 0, errs.Internal("BREAKER_STORE_UNAVAILABLE", "failed to read provider failures", err)
	}
	return int(count), nil
}

// Open reports whether the provider's circuit is open for the current
// window. Failures from expired windows never count.
func (b *CircuitBreaker) Open(ctx context.Context, providerID string) (bool, error) {
	count, err := b.FailureCount(ctx, providerID)
	if err != nil {
		return false, err
	}
	return count >= b.Threshold, nil
}

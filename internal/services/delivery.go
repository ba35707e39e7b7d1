package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zoobzio/clockz"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/metrics"
	"payment-gateway/internal/models"
)

// DeliveryEngine pushes canonical notifications to tenant callback URLs with
// bounded retries and exponential backoff. Connection faults, 5xx and 429
// are retryable; every other response is terminal.
type DeliveryEngine struct {
	client     *http.Client
	clock      clockz.Clock
	maxRetries int
	logger     logging.Logger
	counters   *metrics.Counters
}

func NewDeliveryEngine(timeout time.Duration, maxRetries int, clock clockz.Clock, logger logging.Logger, counters *metrics.Counters) *DeliveryEngine {
	return &DeliveryEngine{
		client:     &http.Client{Timeout: timeout},
		clock:      clock,
		maxRetries: maxRetries,
		logger:     logger,
		counters:   counters,
	}
}

func (e *DeliveryEngine) Deliver(ctx context.Context, url string, webhook *models.NormalizedWebhook, providerID string) error {
	payload, err := json.Marshal(webhook)
	if err != nil {
		return errs.Internal("WEBHOOK_ENCODE_FAILED", "failed to encode notification", err)
	}

	var lastErr error
	for attemptNum := 1; attemptNum <= e.maxRetries; attemptNum++ {
		start := e.clock.Now()
		outcome, attemptErr := e.attempt(ctx, url, payload)
		attempt := models.DeliveryAttempt{
			Number:  attemptNum,
			Outcome: outcome,
			Elapsed: e.clock.Now().Sub(start),
		}

		if outcome == models.DeliverySucceeded {
			e.counters.IncWebhookDelivered()
			e.logger.Info("webhook delivered", map[string]any{
				"url":      url,
				"gateway":  providerID,
				"event":    webhook.Event,
				"attempts": attempt.Number,
			})
			return nil
		}

		e.logger.Warn("webhook delivery attempt failed", map[string]any{
			"url":        url,
			"gateway":    providerID,
			"attempt":    attempt.Number,
			"outcome":    attempt.Outcome.String(),
			"elapsed_ms": attempt.Elapsed.Milliseconds(),
			"error":      attemptErr.Error(),
		})

		if outcome == models.DeliveryTerminal {
			e.counters.IncWebhookFailed()
			return errs.Gateway("WEBHOOK_DELIVERY_REJECTED", "callback endpoint rejected the notification", attemptErr)
		}

		lastErr = attemptErr
		if attempt.Number == e.maxRetries {
			break
		}

		backoff := time.Duration(1<<attempt.Number) * time.Second
		select {
		case <-e.clock.After(backoff):
		case <-ctx.Done():
			e.counters.IncWebhookFailed()
			return errs.Gateway("WEBHOOK_DELIVERY_ABORTED", "notification delivery canceled", ctx.Err())
		}
	}

	e.counters.IncWebhookFailed()
	return errs.Gateway("WEBHOOK_DELIVERY_EXHAUSTED",
		fmt.Sprintf("delivery to %s failed after %d attempts", url, e.maxRetries), lastErr)
}

func (e *DeliveryEngine) attempt(ctx context.Context, url string, payload []byte) (models.DeliveryOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.DeliveryTerminal, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		// Connection refused, timeout, aborted: all worth another try.
		return models.DeliveryRetryable, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode < 300:
		return models.DeliverySucceeded, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return models.DeliveryRetryable, fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
	default:
		return models.DeliveryTerminal, fmt.Errorf("callback endpoint returned status %d", resp.StatusCode)
	}
}

package models

import (
	"encoding/json"
	"time"
)

// WebhookEnvelope wraps a raw provider notification as produced by ingress
// and buffered on the queue. Immutable.
type WebhookEnvelope struct {
	Gateway    string          `json:"gateway"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// NormalizedWebhook is the canonical notification shape delivered to tenant
// callback endpoints. Metadata keeps the original provider payload for
// traceability.
type NormalizedWebhook struct {
	Event          string         `json:"event"`
	Gateway        string         `json:"gateway"`
	GatewayEventID string         `json:"gateway_event_id"`
	PaymentID      string         `json:"payment_id"`
	Status         PaymentStatus  `json:"status"`
	Amount         float64        `json:"amount"`
	Currency       string         `json:"currency"`
	Timestamp      time.Time      `json:"timestamp"`
	Metadata       map[string]any `json:"metadata"`
}

// DeliveryOutcome classifies a single delivery attempt.
type DeliveryOutcome int

const (
	DeliverySucceeded DeliveryOutcome = iota
	DeliveryRetryable
	DeliveryTerminal
)

func (o DeliveryOutcome) String() string {
	switch o {
	case DeliverySucceeded:
		return "succeeded"
	case DeliveryRetryable:
		return "retryable"
	case DeliveryTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// DeliveryAttempt is ephemeral state driving the retry loop. Never persisted.
type DeliveryAttempt struct {
	Number  int
	Outcome DeliveryOutcome
	Elapsed time.Duration
}

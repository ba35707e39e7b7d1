package models

import "time"

// Currency is the closed set of currencies the gateway accepts.
type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// PaymentStatus is the canonical status every provider result is mapped into.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusAuthorized PaymentStatus = "authorized"
	StatusCompleted  PaymentStatus = "completed"
	StatusCanceled   PaymentStatus = "canceled"
	StatusUnknown    PaymentStatus = "unknown"
)

// PaymentRequest is an accepted payment submission. Immutable once parsed.
type PaymentRequest struct {
	TenantID       string            `json:"tenantId" validate:"required"`
	IdempotencyKey string            `json:"idempotencyKey" validate:"required"`
	Amount         float64           `json:"amount" validate:"required,gt=0"`
	Currency       Currency          `json:"currency" validate:"required,oneof=BRL USD EUR"`
	Description    string            `json:"description"`
	CustomerID     string            `json:"customerId,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// PaymentResponse is the canonical payment response returned to tenants.
// Provider-specific fields are preserved under Data.
type PaymentResponse struct {
	ID          string         `json:"id"`
	Gateway     string         `json:"gateway"`
	GatewayID   string         `json:"gateway_id"`
	Status      PaymentStatus  `json:"status"`
	PaymentType string         `json:"payment_type"`
	CreatedAt   time.Time      `json:"created_at"`
	Data        map[string]any `json:"data"`
}

// Package providers contains the payment provider adapters. Each adapter
// owns its authentication handshake and wire shapes; callers only see the
// Adapter interface and classified errors.
package providers

import (
	"context"

	"payment-gateway/internal/models"
)

const (
	ProviderPix  = "pix"
	ProviderCard = "card"
)

// Adapter executes a payment creation call against one provider. Failures
// come back as *Error with the failure class already decided.
type Adapter interface {
	Name() string
	ProcessPayment(ctx context.Context, req *models.PaymentRequest) (map[string]any, error)
}

// Registry resolves adapters by provider id. Populated once at startup;
// read-only afterwards.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Get(providerID string) (Adapter, bool) {
	a, ok := r.adapters[providerID]
	return a, ok
}

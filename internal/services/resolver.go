package services

import (
	"context"
	"fmt"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/models"
)

// CallbackResolver maps a canonical notification to the tenant's registered
// delivery URL.
type CallbackResolver interface {
	Resolve(ctx context.Context, webhook *models.NormalizedWebhook) (string, error)
}

// CallbackStore is the lookup side of the callback registry.
type CallbackStore interface {
	PaymentTenant(ctx context.Context, gateway, paymentID string) (string, bool, error)
	CallbackURL(ctx context.Context, hashKey, tenantID string) (string, bool, error)
}

// StoreCallbackResolver resolves in two hops: the payment id identifies the
// tenant, the tenant identifies the registered URL. A missing mapping or
// registration is terminal; redelivering cannot fix it.
type StoreCallbackResolver struct {
	Store        CallbackStore
	CallbacksKey string
}

func (r *StoreCallbackResolver) Resolve(ctx context.Context, webhook *models.NormalizedWebhook) (string, error) {
	tenantID, found, err := r.Store.PaymentTenant(ctx, webhook.Gateway, webhook.PaymentID)
	if err != nil {
		return "", errs.Internal("CALLBACK_LOOKUP_FAILED", "failed to resolve notification tenant", err)
	}
	if !found {
		return "", errs.Validation("UNKNOWN_PAYMENT", fmt.Sprintf("no tenant known for %s payment %s", webhook.Gateway, webhook.PaymentID))
	}

	url, found, err := r.Store.CallbackURL(ctx, r.CallbacksKey, tenantID)
	if err != nil {
		return "", errs.Internal("CALLBACK_LOOKUP_FAILED", "failed to read tenant callback url", err)
	}
	if !found {
		return "", errs.Validation("CALLBACK_NOT_REGISTERED", fmt.Sprintf("tenant %s has no registered callback url", tenantID))
	}
	return url, nil
}

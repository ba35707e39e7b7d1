package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"payment-gateway/internal/config"
	"payment-gateway/internal/errs"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/metrics"
	"payment-gateway/internal/models"
	"payment-gateway/internal/normalizer"
	"payment-gateway/internal/providers"
)

// TenantStore records which tenant a provider payment belongs to, for
// webhook routing later.
type TenantStore interface {
	MapPaymentTenant(ctx context.Context, gateway, paymentID, tenantID string, ttl time.Duration) error
}

// PaymentResult pairs the canonical response with its serialized form. Body
// is the exact bytes persisted in the idempotency record, so retries of the
// same key return byte-identical content.
type PaymentResult struct {
	Response *models.PaymentResponse
	Body     []byte
}

// Orchestrator answers payment submissions: idempotency check, breaker-aware
// provider selection, adapter call, normalization, record persistence.
type Orchestrator struct {
	gate      *IdempotencyGate
	breaker   *CircuitBreaker
	registry  *providers.Registry
	norm      *normalizer.Normalizer
	tenants   TenantStore
	routeFor  func(tenantID string) config.Route
	maxAmount float64
	logger    logging.Logger
	counters  *metrics.Counters
	validate  *validator.Validate
}

func NewOrchestrator(
	gate *IdempotencyGate,
	breaker *CircuitBreaker,
	registry *providers.Registry,
	norm *normalizer.Normalizer,
	tenants TenantStore,
	routeFor func(tenantID string) config.Route,
	maxAmount float64,
	logger logging.Logger,
	counters *metrics.Counters,
) *Orchestrator {
	return &Orchestrator{
		gate:      gate,
		breaker:   breaker,
		registry:  registry,
		norm:      norm,
		tenants:   tenants,
		routeFor:  routeFor,
		maxAmount: maxAmount,
		logger:    logger,
		counters:  counters,
		validate:  validator.New(),
	}
}

func (o *Orchestrator) Process(ctx context.Context, req *models.PaymentRequest) (*PaymentResult, error) {
	if err := o.validateRequest(req); err != nil {
		return nil, err
	}

	// A live record short-circuits everything: no provider call, no breaker
	// update.
	cached, found, err := o.gate.Get(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if found {
		o.counters.IncIdempotentHit()
		o.logger.Info("returning cached response", map[string]any{
			"tenant": req.TenantID,
			"key":    req.IdempotencyKey,
		})
		return decodeResult(cached)
	}

	providerID, err := o.selectProvider(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	adapter, ok := o.registry.Get(providerID)
	if !ok {
		return nil, errs.Internal("PROVIDER_NOT_REGISTERED", fmt.Sprintf("no adapter registered for provider %q", providerID), nil)
	}

	o.counters.IncProcessed()
	body, err := adapter.ProcessPayment(ctx, req)
	if err != nil {
		return nil, o.recordProviderFailure(ctx, providerID, req, err)
	}

	response, err := o.norm.Response(providerID, body)
	if err != nil {
		o.counters.IncFailed()
		return nil, err
	}

	encoded, err := json.Marshal(response)
	if err != nil {
		return nil, errs.Internal("RESPONSE_ENCODE_FAILED", "failed to encode payment response", err)
	}

	stored, err := o.gate.Put(ctx, req.TenantID, req.IdempotencyKey, encoded)
	if err != nil {
		return nil, err
	}
	if !stored {
		// Lost the first-writer race: a concurrent request with this key
		// persisted its response first. Return the winner's bytes.
		winner, found, err := o.gate.Get(ctx, req.TenantID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errs.Internal("IDEMPOTENCY_RECORD_LOST", "conflicting idempotency record disappeared", nil)
		}
		o.counters.IncIdempotentHit()
		return decodeResult(winner)
	}

	if err := o.tenants.MapPaymentTenant(ctx, response.Gateway, response.GatewayID, req.TenantID, o.gate.TTL); err != nil {
		o.logger.Error("failed to map payment to tenant", map[string]any{
			"tenant":     req.TenantID,
			"gateway":    response.Gateway,
			"gateway_id": response.GatewayID,
			"error":      err.Error(),
		})
	}

	o.counters.IncSucceeded()
	o.logger.Info("payment processed", map[string]any{
		"tenant":     req.TenantID,
		"gateway":    response.Gateway,
		"gateway_id": response.GatewayID,
		"status":     string(response.Status),
	})
	return &PaymentResult{Response: response, Body: encoded}, nil
}

func (o *Orchestrator) validateRequest(req *models.PaymentRequest) error {
	if err := o.validate.Struct(req); err != nil {
		details := map[string]any{}
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return &errs.Error{
			Kind:    errs.KindValidation,
			Code:    "INVALID_PAYMENT_REQUEST",
			Message: "payment request failed validation",
			Details: details,
		}
	}
	if o.maxAmount > 0 && req.Amount > o.maxAmount {
		return errs.Validation("AMOUNT_ABOVE_CEILING", fmt.Sprintf("amount exceeds the configured ceiling of %.2f", o.maxAmount))
	}
	return nil
}

// selectProvider picks the tenant's primary provider unless its circuit is
// open, then the configured fallback.
func (o *Orchestrator) selectProvider(ctx context.Context, tenantID string) (string, error) {
	route := o.routeFor(tenantID)

	open, err := o.breaker.Open(ctx, route.Provider)
	if err != nil {
		return "", err
	}
	if !open {
		return route.Provider, nil
	}

	if route.Fallback == "" {
		return "", errs.CircuitOpen("GATEWAY_UNAVAILABLE", fmt.Sprintf("provider %s is unavailable and no fallback is configured", route.Provider))
	}

	fallbackOpen, err := o.breaker.Open(ctx, route.Fallback)
	if err != nil {
		return "", err
	}
	if fallbackOpen {
		return "", errs.CircuitOpen("GATEWAY_UNAVAILABLE", "primary and fallback providers are both unavailable")
	}

	o.logger.Info("routing to fallback provider", map[string]any{
		"tenant":   tenantID,
		"primary":  route.Provider,
		"fallback": route.Fallback,
	})
	return route.Fallback, nil
}

func (o *Orchestrator) recordProviderFailure(ctx context.Context, providerID string, req *models.PaymentRequest, callErr error) error {
	o.counters.IncFailed()

	opened, err := o.breaker.RecordFailure(ctx, providerID)
	if err != nil {
		o.logger.Error("failed to record provider failure", map[string]any{
			"provider": providerID,
			"error":    err.Error(),
		})
	} else if opened {
		o.counters.IncBreakerOpen()
	}

	o.logger.Error("provider call failed", map[string]any{
		"tenant":   req.TenantID,
		"provider": providerID,
		"error":    callErr.Error(),
	})
	return errs.Gateway("PROVIDER_CALL_FAILED", fmt.Sprintf("payment provider %s rejected the request", providerID), callErr)
}

func decodeResult(body []byte) (*PaymentResult, error) {
	var response models.PaymentResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errs.Internal("IDEMPOTENCY_RECORD_CORRUPT", "cached response could not be decoded", err)
	}
	return &PaymentResult{Response: &response, Body: body}, nil
}

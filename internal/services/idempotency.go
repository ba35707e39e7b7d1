package services

import (
	"context"
	"time"

	"payment-gateway/internal/errs"
)

// IdempotencyStore is the durable record store behind the gate.
type IdempotencyStore interface {
	GetIdempotencyRecord(ctx context.Context, tenantID, key string) ([]byte, bool, error)
	PutIdempotencyRecord(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) (bool, error)
}

// IdempotencyGate deduplicates payment submissions per (tenant, key). Records
// are written conditionally: the first writer wins and later writers must
// re-read the winning record. A store failure is fatal for the request;
// no payment is attempted when the gate is unreachable.
type IdempotencyGate struct {
	Store IdempotencyStore
	TTL   time.Duration
}

func (g *IdempotencyGate) Get(ctx context.Context, tenantID, key string) ([]byte, bool, error) {
	data, found, err := g.Store.GetIdempotencyRecord(ctx, tenantID, key)
	if err != nil {
		return nil, false, errs.Internal("IDEMPOTENCY_STORE_UNAVAILABLE", "idempotency lookup failed", err)
	}
	return data, found, nil
}

// Put stores the serialized response for the key. Returns false when another
// request already holds the key; the existing record is never overwritten.
func (g *IdempotencyGate) Put(ctx context.Context, tenantID, key string, response []byte) (bool, error) {
	stored, err := g.Store.PutIdempotencyRecord(ctx, tenantID, key, response, g.TTL)
	if err != nil {
		return false, errs.Internal("IDEMPOTENCY_STORE_UNAVAILABLE", "idempotency write failed", err)
	}
	return stored, nil
}

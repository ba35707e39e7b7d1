package services_test

import (
	"context"
	"sync"
	"time"

	"payment-gateway/internal/models"
)

type fakeCounterStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{counts: make(map[string]int64)}
}

func (s *fakeCounterStore) IncrFailureCount(_ context.Context, counterKey string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[counterKey]++
	return s.counts[counterKey], nil
}

func (s *fakeCounterStore) FailureCount(_ context.Context, counterKey string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[counterKey], nil
}

type fakeRecordStore struct {
	mu      sync.Mutex
	records map[string][]byte
	getErr  error
	putErr  error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[string][]byte)}
}

func (s *fakeRecordStore) GetIdempotencyRecord(_ context.Context, tenantID, key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, found := s.records[tenantID+":"+key]
	return data, found, nil
}

func (s *fakeRecordStore) PutIdempotencyRecord(_ context.Context, tenantID, key string, response []byte, _ time.Duration) (bool, error) {
	if s.putErr != nil {
		return false, s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[tenantID+":"+key]; exists {
		return false, nil
	}
	s.records[tenantID+":"+key] = response
	return true, nil
}

type fakeAdapter struct {
	name  string
	body  map[string]any
	err   error
	calls int
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) ProcessPayment(context.Context, *models.PaymentRequest) (map[string]any, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.body, nil
}

type fakeTenantStore struct {
	mappings map[string]string
}

func newFakeTenantStore() *fakeTenantStore {
	return &fakeTenantStore{mappings: make(map[string]string)}
}

func (s *fakeTenantStore) MapPaymentTenant(_ context.Context, gateway, paymentID, tenantID string, _ time.Duration) error {
	s.mappings[gateway+":"+paymentID] = tenantID
	return nil
}

type fakeResolver struct {
	url string
	err error
}

func (r *fakeResolver) Resolve(context.Context, *models.NormalizedWebhook) (string, error) {
	return r.url, r.err
}

type fakeDeliverer struct {
	err   error
	calls []string
}

func (d *fakeDeliverer) Deliver(_ context.Context, url string, _ *models.NormalizedWebhook, _ string) error {
	d.calls = append(d.calls, url)
	return d.err
}

package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore holds all shared gateway state: idempotency records, circuit
// breaker counters, the webhook queue, the tenant callback registry and the
// payment-to-tenant mapping webhooks are resolved through.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		PoolSize:        500,
		MinIdleConns:    20,
		PoolTimeout:     2 * time.Second,
		DialTimeout:     2 * time.Second,
		ReadTimeout:     1 * time.Second,
		WriteTimeout:    1 * time.Second,
		MaxRetries:      1,
		MaxRetryBackoff: 256 * time.Millisecond,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	log.Println("Redis connection initialized successfully")
	return &RedisStore{client: rdb}, nil
}

// NewRedisStoreFromClient wraps an existing client. Used in tests.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func idempotencyKey(tenantID, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", tenantID, key)
}

func paymentTenantKey(gateway, paymentID string) string {
	return fmt.Sprintf("payment-tenant:%s:%s", gateway, paymentID)
}

// GetIdempotencyRecord returns the cached response bytes for the key, if a
// live record exists.
func (s *RedisStore) GetIdempotencyRecord(ctx context.Context, tenantID, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, idempotencyKey(tenantID, key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read idempotency record: %v", err)
	}
	return data, true, nil
}

// PutIdempotencyRecord writes the record only if the key is absent (first
// writer wins). Returns false when another writer already holds the key.
func (s *RedisStore) PutIdempotencyRecord(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) (bool, error) {
	stored, err := s.client.SetNX(ctx, idempotencyKey(tenantID, key), response, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to write idempotency record: %v", err)
	}
	return stored, nil
}

// IncrFailureCount increments a breaker window counter and refreshes its TTL
// in one round trip.
func (s *RedisStore) IncrFailureCount(ctx context.Context, counterKey string, ttl time.Duration) (int64, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment failure counter: %v", err)
	}
	return incr.Val(), nil
}

// FailureCount returns the counter value, zero when the window has no
// failures or has expired.
func (s *RedisStore) FailureCount(ctx context.Context, counterKey string) (int64, error) {
	count, err := s.client.Get(ctx, counterKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read failure counter: %v", err)
	}
	return count, nil
}

func (s *RedisStore) Enqueue(ctx context.Context, queueName string, raw []byte) error {
	return s.client.LPush(ctx, queueName, raw).Err()
}

// Dequeue blocks up to timeout for the next queued message. Returns nil with
// no error when the timeout elapses empty.
func (s *RedisStore) Dequeue(ctx context.Context, queueName string, timeout time.Duration) ([]byte, error) {
	result, err := s.client.BRPop(ctx, timeout, queueName).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(result[1]), nil
}

// RegisterCallback stores a tenant's delivery URL in the callback registry.
func (s *RedisStore) RegisterCallback(ctx context.Context, hashKey, tenantID, url string) error {
	if err := s.client.HSet(ctx, hashKey, tenantID, url).Err(); err != nil {
		return fmt.Errorf("failed to register callback: %v", err)
	}
	return nil
}

func (s *RedisStore) CallbackURL(ctx context.Context, hashKey, tenantID string) (string, bool, error) {
	url, err := s.client.HGet(ctx, hashKey, tenantID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read callback url: %v", err)
	}
	return url, true, nil
}

// MapPaymentTenant remembers which tenant a provider payment belongs to so
// inbound notifications can be routed back.
func (s *RedisStore) MapPaymentTenant(ctx context.Context, gateway, paymentID, tenantID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, paymentTenantKey(gateway, paymentID), tenantID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to map payment to tenant: %v", err)
	}
	return nil
}

func (s *RedisStore) PaymentTenant(ctx context.Context, gateway, paymentID string) (string, bool, error) {
	tenantID, err := s.client.Get(ctx, paymentTenantKey(gateway, paymentID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve payment tenant: %v", err)
	}
	return tenantID, true, nil
}

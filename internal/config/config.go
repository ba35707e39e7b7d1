package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"
)

// Route names a tenant's primary provider and the provider traffic shifts to
// while the primary's circuit is open. An empty Fallback means no failover.
type Route struct {
	Provider string `json:"provider"`
	Fallback string `json:"fallback"`
}

type ProviderConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	APIKey       string
	PixKey       string
}

type Config struct {
	// Server configuration
	Port string

	// Redis configuration
	RedisAddr string

	// Provider configuration
	Pix  ProviderConfig
	Card ProviderConfig

	// Routing
	DefaultRoute Route
	TenantRoutes map[string]Route

	// Circuit breaker configuration
	FailureThreshold  int
	BreakerWindow     time.Duration
	BreakerCounterTTL time.Duration

	// Idempotency configuration
	IdempotencyTTL time.Duration

	// Webhook delivery configuration
	DeliveryTimeout    time.Duration
	DeliveryMaxRetries int

	// Queue configuration
	WebhookQueue string
	WorkerCount  int

	// Callback registry
	CallbacksKey string

	// Request limits
	MaxAmount float64
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		Pix: ProviderConfig{
			BaseURL:      getEnv("PIX_BASE_URL", "http://pix-provider:8080"),
			Timeout:      getDurationEnv("PIX_TIMEOUT", 5*time.Second),
			ClientID:     getEnv("PIX_CLIENT_ID", ""),
			ClientSecret: getEnv("PIX_CLIENT_SECRET", ""),
			PixKey:       getEnv("PIX_KEY", ""),
		},
		Card: ProviderConfig{
			BaseURL: getEnv("CARD_BASE_URL", "http://card-provider:8080"),
			Timeout: getDurationEnv("CARD_TIMEOUT", 5*time.Second),
			APIKey:  getEnv("CARD_API_KEY", ""),
		},
		DefaultRoute: Route{
			Provider: getEnv("DEFAULT_PROVIDER", "pix"),
			Fallback: getEnv("FALLBACK_PROVIDER", "card"),
		},
		TenantRoutes:       getRoutesEnv("TENANT_ROUTES"),
		FailureThreshold:   getIntEnv("FAILURE_THRESHOLD", 5),
		BreakerWindow:      getDurationEnv("BREAKER_WINDOW", time.Minute),
		BreakerCounterTTL:  getDurationEnv("BREAKER_COUNTER_TTL", time.Hour),
		IdempotencyTTL:     getDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		DeliveryTimeout:    getDurationEnv("DELIVERY_TIMEOUT", 10*time.Second),
		DeliveryMaxRetries: getIntEnv("DELIVERY_MAX_RETRIES", 3),
		WebhookQueue:       getEnv("WEBHOOK_QUEUE", "webhook_jobs"),
		WorkerCount:        getIntEnv("WORKER_COUNT", 10),
		CallbacksKey:       getEnv("CALLBACKS_KEY", "tenant_callbacks"),
		MaxAmount:          getFloatEnv("MAX_AMOUNT", 100000),
	}
}

// RouteFor returns the tenant's configured route, falling back to the
// gateway default.
func (c *Config) RouteFor(tenantID string) Route {
	if route, ok := c.TenantRoutes[tenantID]; ok {
		return route
	}
	return c.DefaultRoute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getRoutesEnv(key string) map[string]Route {
	routes := make(map[string]Route)
	if value := os.Getenv(key); value != "" {
		if err := json.Unmarshal([]byte(value), &routes); err != nil {
			log.Printf("Ignoring malformed %s: %v", key, err)
		}
	}
	return routes
}

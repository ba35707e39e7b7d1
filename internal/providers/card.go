package providers

import (
	"context"
	"math"
	"net/http"
	"strings"

	"payment-gateway/internal/config"
	"payment-gateway/internal/models"
)

// CardAdapter creates payment intents against a card acquirer using a static
// bearer API key. Amounts go over the wire in minor units.
type CardAdapter struct {
	client *Client
	apiKey string
}

func NewCardAdapter(cfg config.ProviderConfig) *CardAdapter {
	return &CardAdapter{
		client: NewClient(ProviderCard, cfg.BaseURL, cfg.Timeout),
		apiKey: cfg.APIKey,
	}
}

func (a *CardAdapter) Name() string { return ProviderCard }

func (a *CardAdapter) ProcessPayment(ctx context.Context, req *models.PaymentRequest) (map[string]any, error) {
	intent := map[string]any{
		"amount":      int64(math.Round(req.Amount * 100)),
		"currency":    strings.ToLower(string(req.Currency)),
		"description": req.Description,
	}
	if req.CustomerID != "" {
		intent["customer"] = req.CustomerID
	}
	if len(req.Metadata) > 0 {
		intent["metadata"] = req.Metadata
	}

	return a.client.DoJSON(ctx, http.MethodPost, "/v1/payment_intents",
		map[string]string{"Authorization": "Bearer " + a.apiKey}, intent)
}

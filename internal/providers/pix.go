package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zoobzio/clockz"

	"payment-gateway/internal/config"
	"payment-gateway/internal/models"
)

// PixAdapter creates immediate PIX charges. Authentication is an OAuth
// client-credentials exchange with the token cached between calls.
type PixAdapter struct {
	client *Client
	tokens *tokenSource
	pixKey string
}

func NewPixAdapter(cfg config.ProviderConfig, clock clockz.Clock) *PixAdapter {
	client := NewClient(ProviderPix, cfg.BaseURL, cfg.Timeout)
	return &PixAdapter{
		client: client,
		tokens: newTokenSource(client, cfg.ClientID, cfg.ClientSecret, clock),
		pixKey: cfg.PixKey,
	}
}

func (a *PixAdapter) Name() string { return ProviderPix }

func (a *PixAdapter) ProcessPayment(ctx context.Context, req *models.PaymentRequest) (map[string]any, error) {
	token, err := a.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	charge := map[string]any{
		"calendario":         map[string]any{"expiracao": 3600},
		"valor":              map[string]any{"original": fmt.Sprintf("%.2f", req.Amount)},
		"chave":              a.pixKey,
		"solicitacaoPagador": req.Description,
	}

	return a.client.DoJSON(ctx, http.MethodPost, "/v2/cob",
		map[string]string{"Authorization": "Bearer " + token}, charge)
}

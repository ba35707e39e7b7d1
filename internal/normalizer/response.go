package normalizer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/models"
	"payment-gateway/internal/providers"
)

var pixChargeStatuses = map[string]models.PaymentStatus{
	"ATIVA":                           models.StatusPending,
	"CONCLUIDA":                       models.StatusCompleted,
	"REMOVIDA_PELO_USUARIO_RECEBEDOR": models.StatusCanceled,
	"REMOVIDA_PELO_PSP":               models.StatusCanceled,
}

var cardIntentStatuses = map[string]models.PaymentStatus{
	"requires_payment_method": models.StatusPending,
	"requires_confirmation":   models.StatusPending,
	"requires_action":         models.StatusPending,
	"processing":              models.StatusProcessing,
	"requires_capture":        models.StatusAuthorized,
	"succeeded":               models.StatusCompleted,
	"canceled":                models.StatusCanceled,
}

// Response maps a provider-native payment result into the canonical response.
// A result without a provider transaction id is rejected; optional fields are
// probed and their absence logged, not failed.
func (n *Normalizer) Response(providerID string, body map[string]any) (*models.PaymentResponse, error) {
	switch providerID {
	case providers.ProviderPix:
		return n.pixResponse(body)
	case providers.ProviderCard:
		return n.cardResponse(body)
	default:
		return nil, errs.Validation("UNKNOWN_PROVIDER", fmt.Sprintf("unknown provider %q", providerID))
	}
}

func (n *Normalizer) pixResponse(body map[string]any) (*models.PaymentResponse, error) {
	txid := stringField(body, "txid")
	if txid == "" {
		return nil, errs.Validation("MISSING_TRANSACTION_ID", "pix charge response missing txid")
	}

	status, ok := pixChargeStatuses[stringField(body, "status")]
	if !ok {
		status = models.StatusUnknown
	}

	data := map[string]any{}
	for k, v := range body {
		data[k] = v
	}

	// Providers disagree on where the copy-and-paste code lives.
	if qr := firstString(body, "pixCopiaECola", "qrcode", "qr_code"); qr != "" {
		data["qr_code"] = qr
	} else {
		n.Logger.Warn("pix charge response missing qr code", map[string]any{"txid": txid})
	}

	return &models.PaymentResponse{
		ID:          uuid.NewString(),
		Gateway:     providers.ProviderPix,
		GatewayID:   txid,
		Status:      status,
		PaymentType: "pix",
		CreatedAt:   n.Clock.Now().UTC(),
		Data:        data,
	}, nil
}

func (n *Normalizer) cardResponse(body map[string]any) (*models.PaymentResponse, error) {
	intentID := stringField(body, "id")
	if intentID == "" {
		return nil, errs.Validation("MISSING_TRANSACTION_ID", "card intent response missing id")
	}

	status, ok := cardIntentStatuses[stringField(body, "status")]
	if !ok {
		status = models.StatusUnknown
	}

	createdAt := n.Clock.Now().UTC()
	if created, ok := numberField(body, "created"); ok {
		createdAt = time.Unix(int64(created), 0).UTC()
	}

	return &models.PaymentResponse{
		ID:          uuid.NewString(),
		Gateway:     providers.ProviderCard,
		GatewayID:   intentID,
		Status:      status,
		PaymentType: "card",
		CreatedAt:   createdAt,
		Data:        body,
	}, nil
}

package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/models"
	"payment-gateway/internal/providers"
)

var cardEventStatuses = map[string]models.PaymentStatus{
	"payment_intent.succeeded":       models.StatusCompleted,
	"payment_intent.requires_action": models.StatusPending,
	"payment_intent.processing":      models.StatusProcessing,
	"payment_intent.canceled":        models.StatusCanceled,
	"payment_intent.payment_failed":  models.StatusCanceled,
}

// Webhook maps a provider notification payload into the canonical shape.
// Invalid payloads are a permanent failure and must not be retried.
func (n *Normalizer) Webhook(providerID string, payload []byte) (*models.NormalizedWebhook, error) {
	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errs.Validation("INVALID_WEBHOOK_PAYLOAD", "notification payload is not a JSON object")
	}

	switch providerID {
	case providers.ProviderPix:
		return n.pixWebhook(body)
	case providers.ProviderCard:
		return n.cardWebhook(body)
	default:
		return nil, errs.Validation("UNKNOWN_PROVIDER", fmt.Sprintf("unknown provider %q", providerID))
	}
}

// pixWebhook expects a non-empty "pix" array of received transactions, each
// with a txid and an amount. A transaction carrying its settlement time
// (horario) is completed; one without is still pending.
func (n *Normalizer) pixWebhook(body map[string]any) (*models.NormalizedWebhook, error) {
	records, _ := body["pix"].([]any)
	if len(records) == 0 {
		return nil, errs.Validation("INVALID_WEBHOOK_PAYLOAD", "pix notification missing transaction records")
	}

	for _, r := range records {
		record, ok := r.(map[string]any)
		if !ok || stringField(record, "txid") == "" {
			return nil, errs.Validation("INVALID_WEBHOOK_PAYLOAD", "pix transaction record missing txid")
		}
		if _, ok := numberField(record, "valor"); !ok {
			return nil, errs.Validation("INVALID_WEBHOOK_PAYLOAD", "pix transaction record missing valor")
		}
	}

	record := records[0].(map[string]any)
	txid := stringField(record, "txid")
	amount, _ := numberField(record, "valor")

	status := models.StatusPending
	timestamp := n.Clock.Now().UTC()
	if horario := stringField(record, "horario"); horario != "" {
		status = models.StatusCompleted
		if parsed, err := time.Parse(time.RFC3339, horario); err == nil {
			timestamp = parsed
		} else {
			n.Logger.Warn("pix notification carries unparseable horario", map[string]any{"txid": txid, "horario": horario})
		}
	}

	eventID := stringField(record, "endToEndId")
	if eventID == "" {
		eventID = txid
	}

	return &models.NormalizedWebhook{
		Event:          "payment." + string(status),
		Gateway:        providers.ProviderPix,
		GatewayEventID: eventID,
		PaymentID:      txid,
		Status:         status,
		Amount:         amount,
		Currency:       string(models.CurrencyBRL),
		Timestamp:      timestamp,
		Metadata:       map[string]any{"provider_payload": body},
	}, nil
}

// cardWebhook expects an event type and a data.object with an id. The event
// type drives the closed status table; unmapped types map to unknown.
func (n *Normalizer) cardWebhook(body map[string]any) (*models.NormalizedWebhook, error) {
	eventType := stringField(body, "type")
	if eventType == "" {
		return nil, errs.Validation("INVALID_WEBHOOK_PAYLOAD", "card notification missing event type")
	}

	object := objectField(objectField(body, "data"), "object")
	intentID := stringField(object, "id")
	if intentID == "" {
		return nil, errs.Validation("INVALID_WEBHOOK_PAYLOAD", "card notification missing object id")
	}

	status, ok := cardEventStatuses[eventType]
	if !ok {
		status = models.StatusUnknown
	}

	var amount float64
	if minor, ok := numberField(object, "amount"); ok {
		amount = minor / 100
	}

	timestamp := n.Clock.Now().UTC()
	if created, ok := numberField(object, "created"); ok {
		timestamp = time.Unix(int64(created), 0).UTC()
	}

	eventID := stringField(body, "id")
	if eventID == "" {
		eventID = intentID
	}

	return &models.NormalizedWebhook{
		Event:          "payment." + string(status),
		Gateway:        providers.ProviderCard,
		GatewayEventID: eventID,
		PaymentID:      intentID,
		Status:         status,
		Amount:         amount,
		Currency:       strings.ToUpper(stringField(object, "currency")),
		Timestamp:      timestamp,
		Metadata:       map[string]any{"provider_payload": body},
	}, nil
}

package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/models"
	"payment-gateway/internal/normalizer"
	"payment-gateway/internal/services"
)

func envelopeMessage(t *testing.T, gateway string, payload string) []byte {
	t.Helper()
	raw, err := json.Marshal(models.WebhookEnvelope{
		Gateway:    gateway,
		Payload:    json.RawMessage(payload),
		ReceivedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return raw
}

func newProcessor(resolver *fakeResolver, deliverer *fakeDeliverer) *services.WebhookProcessor {
	return &services.WebhookProcessor{
		Normalizer: normalizer.New(logging.NopLogger{}, clockz.NewFakeClock()),
		Resolver:   resolver,
		Engine:     deliverer,
		Logger:     logging.NopLogger{},
	}
}

func TestWebhookProcessor_DeliversValidNotification(t *testing.T) {
	deliverer := &fakeDeliverer{}
	processor := newProcessor(&fakeResolver{url: "https://tenant.example/hook"}, deliverer)

	msg := envelopeMessage(t, "pix", `{"pix":[{"txid":"abc123","valor":99.99,"horario":"2024-02-26T10:30:00Z"}]}`)
	failed := processor.ProcessBatch(context.Background(), [][]byte{msg})

	require.Empty(t, failed)
	require.Equal(t, []string{"https://tenant.example/hook"}, deliverer.calls)
}

func TestWebhookProcessor_FailedItemsDoNotBlockSiblings(t *testing.T) {
	deliverer := &fakeDeliverer{err: errs.Gateway("WEBHOOK_DELIVERY_EXHAUSTED", "delivery failed", nil)}
	processor := newProcessor(&fakeResolver{url: "https://tenant.example/hook"}, deliverer)

	invalid := envelopeMessage(t, "pix", `{"pix":[]}`)
	retryable := envelopeMessage(t, "pix", `{"pix":[{"txid":"abc123","valor":10}]}`)

	failed := processor.ProcessBatch(context.Background(), [][]byte{invalid, retryable})

	// Only the deliverable-but-failed item comes back for redelivery; the
	// invalid payload is dropped for good.
	require.Equal(t, [][]byte{retryable}, failed)
	require.Len(t, deliverer.calls, 1)
}

func TestWebhookProcessor_ValidationFailuresAreNeverRetried(t *testing.T) {
	deliverer := &fakeDeliverer{}
	processor := newProcessor(&fakeResolver{url: "https://tenant.example/hook"}, deliverer)

	msgs := [][]byte{
		[]byte(`not json`),
		envelopeMessage(t, "card", `{"data":{"object":{"id":"pi_1"}}}`),
		envelopeMessage(t, "unknown-provider", `{}`),
	}

	failed := processor.ProcessBatch(context.Background(), msgs)
	require.Empty(t, failed)
	require.Empty(t, deliverer.calls)
}

func TestWebhookProcessor_UnresolvableTargetIsDropped(t *testing.T) {
	deliverer := &fakeDeliverer{}
	processor := newProcessor(&fakeResolver{err: errs.Validation("UNKNOWN_PAYMENT", "no tenant known")}, deliverer)

	msg := envelopeMessage(t, "pix", `{"pix":[{"txid":"abc123","valor":10}]}`)
	failed := processor.ProcessBatch(context.Background(), [][]byte{msg})

	require.Empty(t, failed)
	require.Empty(t, deliverer.calls)
}

func TestWebhookProcessor_ResolverOutageIsRetryable(t *testing.T) {
	deliverer := &fakeDeliverer{}
	processor := newProcessor(&fakeResolver{err: errs.Internal("CALLBACK_LOOKUP_FAILED", "store down", errors.New("timeout"))}, deliverer)

	msg := envelopeMessage(t, "pix", `{"pix":[{"txid":"abc123","valor":10}]}`)
	failed := processor.ProcessBatch(context.Background(), [][]byte{msg})

	require.Equal(t, [][]byte{msg}, failed)
	require.Empty(t, deliverer.calls)
}

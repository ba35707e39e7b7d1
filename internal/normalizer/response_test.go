package normalizer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/models"
	"payment-gateway/internal/normalizer"
)

func newNormalizer() *normalizer.Normalizer {
	return normalizer.New(logging.NopLogger{}, clockz.NewFakeClock())
}

func TestResponse_PixCharge(t *testing.T) {
	n := newNormalizer()

	resp, err := n.Response("pix", map[string]any{
		"txid":          "tx-1",
		"status":        "ATIVA",
		"pixCopiaECola": "00020126...",
	})
	require.NoError(t, err)

	require.Equal(t, "pix", resp.Gateway)
	require.Equal(t, "tx-1", resp.GatewayID)
	require.Equal(t, models.StatusPending, resp.Status)
	require.Equal(t, "pix", resp.PaymentType)
	require.NotEmpty(t, resp.ID)
	require.Equal(t, "00020126...", resp.Data["qr_code"])
}

func TestResponse_PixQRCodeAlternatesProbedInOrder(t *testing.T) {
	n := newNormalizer()

	resp, err := n.Response("pix", map[string]any{
		"txid":   "tx-1",
		"status": "ATIVA",
		"qrcode": "alternate-spelling",
	})
	require.NoError(t, err)
	require.Equal(t, "alternate-spelling", resp.Data["qr_code"])

	resp, err = n.Response("pix", map[string]any{
		"txid":          "tx-2",
		"pixCopiaECola": "primary",
		"qr_code":       "last-resort",
	})
	require.NoError(t, err)
	require.Equal(t, "primary", resp.Data["qr_code"])
}

func TestResponse_PixMissingQRCodeIsNotFatal(t *testing.T) {
	resp, err := newNormalizer().Response("pix", map[string]any{"txid": "tx-1", "status": "CONCLUIDA"})
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, resp.Status)
	require.NotContains(t, resp.Data, "qr_code")
}

func TestResponse_PixMissingTransactionIDIsRejected(t *testing.T) {
	_, err := newNormalizer().Response("pix", map[string]any{"status": "ATIVA"})
	require.Error(t, err)
	require.Equal(t, "MISSING_TRANSACTION_ID", errs.From(err).Code)
}

func TestResponse_CardIntent(t *testing.T) {
	resp, err := newNormalizer().Response("card", map[string]any{
		"id":       "pi_1",
		"status":   "succeeded",
		"amount":   float64(9999),
		"currency": "usd",
		"created":  float64(1700000000),
	})
	require.NoError(t, err)

	require.Equal(t, "card", resp.Gateway)
	require.Equal(t, "pi_1", resp.GatewayID)
	require.Equal(t, models.StatusCompleted, resp.Status)
	require.Equal(t, "card", resp.PaymentType)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), resp.CreatedAt)
}

func TestResponse_CardStatusTable(t *testing.T) {
	cases := map[string]models.PaymentStatus{
		"requires_payment_method": models.StatusPending,
		"requires_action":         models.StatusPending,
		"processing":              models.StatusProcessing,
		"requires_capture":        models.StatusAuthorized,
		"succeeded":               models.StatusCompleted,
		"canceled":                models.StatusCanceled,
		"something_new":           models.StatusUnknown,
	}

	n := newNormalizer()
	for providerStatus, want := range cases {
		resp, err := n.Response("card", map[string]any{"id": "pi_1", "status": providerStatus})
		require.NoError(t, err)
		require.Equal(t, want, resp.Status, "provider status %q", providerStatus)
	}
}

func TestResponse_UnknownProviderIsValidationError(t *testing.T) {
	_, err := newNormalizer().Response("boleto", map[string]any{"id": "x"})
	require.Error(t, err)
	require.Equal(t, errs.KindValidation, errs.From(err).Kind)
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/models"
	"payment-gateway/internal/services"
)

const tenantHeader = "X-Tenant-ID"

// PaymentProcessor is the orchestrator seen by the HTTP layer.
type PaymentProcessor interface {
	Process(ctx context.Context, req *models.PaymentRequest) (*services.PaymentResult, error)
}

// CallbackRegistry registers tenant delivery URLs.
type CallbackRegistry interface {
	RegisterCallback(ctx context.Context, hashKey, tenantID, url string) error
}

type GatewayHandler struct {
	Orchestrator PaymentProcessor
	Queue        services.WebhookQueue
	QueueName    string
	Callbacks    CallbackRegistry
	CallbacksKey string
	Logger       logging.Logger
}

func (h *GatewayHandler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errs.Validation("INVALID_REQUEST_BODY", "failed to read request body"))
		return
	}
	defer r.Body.Close()

	var req models.PaymentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, errs.Validation("INVALID_JSON", "request body is not valid JSON"))
		return
	}

	// Transport-resolved tenant wins over anything in the body.
	if tenantID := r.Header.Get(tenantHeader); tenantID != "" {
		req.TenantID = tenantID
	}
	if key := r.Header.Get("X-Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	result, err := h.Orchestrator.Process(r.Context(), &req)
	if err != nil {
		h.Logger.Error("payment request failed", map[string]any{
			"tenant": req.TenantID,
			"error":  err.Error(),
		})
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(result.Body)
}

// HandleWebhook accepts a raw provider notification, wraps it into an
// envelope and hands it to the queue. Processing happens in the workers.
func (h *GatewayHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	gateway := strings.TrimPrefix(r.URL.Path, "/webhooks/")
	if gateway == "" || strings.Contains(gateway, "/") {
		writeError(w, errs.Validation("UNKNOWN_PROVIDER", "webhook path must name a provider"))
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, errs.Validation("INVALID_REQUEST_BODY", "failed to read notification body"))
		return
	}
	defer r.Body.Close()

	if !json.Valid(payload) {
		writeError(w, errs.Validation("INVALID_JSON", "notification body is not valid JSON"))
		return
	}

	envelope := models.WebhookEnvelope{
		Gateway:    gateway,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		writeError(w, errs.Internal("ENVELOPE_ENCODE_FAILED", "failed to encode notification envelope", err))
		return
	}

	if err := h.Queue.Enqueue(r.Context(), h.QueueName, raw); err != nil {
		h.Logger.Error("failed to enqueue notification", map[string]any{
			"gateway": gateway,
			"error":   err.Error(),
		})
		writeError(w, errs.Internal("ENQUEUE_FAILED", "failed to accept notification", err))
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleCallbacks registers the calling tenant's delivery URL.
func (h *GatewayHandler) HandleCallbacks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tenantID := r.Header.Get(tenantHeader)
	if tenantID == "" {
		writeError(w, errs.Authentication("MISSING_TENANT", "tenant identification is required"))
		return
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.URL == "" {
		writeError(w, errs.Validation("INVALID_CALLBACK_URL", "request must carry a callback url"))
		return
	}

	if err := h.Callbacks.RegisterCallback(r.Context(), h.CallbacksKey, tenantID, body.URL); err != nil {
		writeError(w, errs.Internal("CALLBACK_REGISTRATION_FAILED", "failed to register callback url", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"payment-gateway/internal/errs"
	"payment-gateway/internal/logging"
	"payment-gateway/internal/models"
	"payment-gateway/internal/normalizer"
)

// Deliverer is the delivery engine seen by the processor.
type Deliverer interface {
	Deliver(ctx context.Context, url string, webhook *models.NormalizedWebhook, providerID string) error
}

// WebhookQueue buffers inbound notification envelopes.
type WebhookQueue interface {
	Enqueue(ctx context.Context, queueName string, raw []byte) error
	Dequeue(ctx context.Context, queueName string, timeout time.Duration) ([]byte, error)
}

// WebhookProcessor turns queued envelopes into tenant deliveries. Items are
// independent: one item's failure never blocks its siblings.
type WebhookProcessor struct {
	Normalizer *normalizer.Normalizer
	Resolver   CallbackResolver
	Engine     Deliverer
	Logger     logging.Logger
}

// ProcessBatch handles every message and returns the subset the queue should
// redeliver. Messages failing validation are dropped: redelivery cannot make
// a malformed payload valid.
func (p *WebhookProcessor) ProcessBatch(ctx context.Context, msgs [][]byte) [][]byte {
	var failed [][]byte
	for _, raw := range msgs {
		if p.processOne(ctx, raw) {
			failed = append(failed, raw)
		}
	}
	return failed
}

func (p *WebhookProcessor) processOne(ctx context.Context, raw []byte) (retry bool) {
	var env models.WebhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		p.Logger.Error("discarding malformed queue message", map[string]any{"error": err.Error()})
		return false
	}

	webhook, err := p.Normalizer.Webhook(env.Gateway, env.Payload)
	if err != nil {
		p.Logger.Error("discarding invalid notification payload", map[string]any{
			"gateway": env.Gateway,
			"error":   err.Error(),
		})
		return false
	}

	url, err := p.Resolver.Resolve(ctx, webhook)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) && e.Kind == errs.KindValidation {
			p.Logger.Error("discarding notification with no delivery target", map[string]any{
				"gateway":    webhook.Gateway,
				"payment_id": webhook.PaymentID,
				"error":      err.Error(),
			})
			return false
		}
		p.Logger.Error("callback resolution failed", map[string]any{
			"gateway":    webhook.Gateway,
			"payment_id": webhook.PaymentID,
			"error":      err.Error(),
		})
		return true
	}

	if err := p.Engine.Deliver(ctx, url, webhook, env.Gateway); err != nil {
		p.Logger.Error("notification delivery failed", map[string]any{
			"gateway":    webhook.Gateway,
			"payment_id": webhook.PaymentID,
			"url":        url,
			"error":      err.Error(),
		})
		return true
	}
	return false
}

// WebhookConsumer runs the worker pool draining the notification queue.
type WebhookConsumer struct {
	Queue       WebhookQueue
	QueueName   string
	Processor   *WebhookProcessor
	Logger      logging.Logger
	WorkerCount int
}

func (c *WebhookConsumer) Start(ctx context.Context) {
	for i := 0; i < c.WorkerCount; i++ {
		go c.worker(ctx, i+1)
	}
}

func (c *WebhookConsumer) worker(ctx context.Context, workerID int) {
	c.Logger.Info("webhook worker started", map[string]any{"worker": workerID})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw, err := c.Queue.Dequeue(ctx, c.QueueName, time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if raw == nil {
			continue
		}

		for _, msg := range c.Processor.ProcessBatch(ctx, [][]byte{raw}) {
			if err := c.Queue.Enqueue(ctx, c.QueueName, msg); err != nil {
				c.Logger.Error("failed to requeue notification", map[string]any{
					"worker": workerID,
					"error":  err.Error(),
				})
			}
		}
	}
}

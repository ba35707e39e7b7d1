package metrics

import "sync/atomic"

// Counters tracks gateway throughput. All increments are atomic.
type Counters struct {
	PaymentsProcessed uint64
	PaymentsSucceeded uint64
	PaymentsFailed    uint64
	IdempotentHits    uint64
	BreakerOpens      uint64
	WebhooksDelivered uint64
	WebhooksFailed    uint64
}

func (c *Counters) IncProcessed() {
	atomic.AddUint64(&c.PaymentsProcessed, 1)
}

func (c *Counters) IncSucceeded() {
	atomic.AddUint64(&c.PaymentsSucceeded, 1)
}

func (c *Counters) IncFailed() {
	atomic.AddUint64(&c.PaymentsFailed, 1)
}

func (c *Counters) IncIdempotentHit() {
	atomic.AddUint64(&c.IdempotentHits, 1)
}

func (c *Counters) IncBreakerOpen() {
	atomic.AddUint64(&c.BreakerOpens, 1)
}

func (c *Counters) IncWebhookDelivered() {
	atomic.AddUint64(&c.WebhooksDelivered, 1)
}

func (c *Counters) IncWebhookFailed() {
	atomic.AddUint64(&c.WebhooksFailed, 1)
}

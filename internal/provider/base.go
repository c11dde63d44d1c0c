package provider

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"campusnotify/internal/domain"
	"campusnotify/internal/ratelimit"
)

const DefaultCallTimeout = 30 * time.Second

// Config carries the knobs shared by every channel sender. Credentials and
// endpoints live inside the Transport; the sender only needs throughput
// and pricing shape.
type Config struct {
	Name            string
	Transport       Transport
	Limiter         *ratelimit.Limiter
	BatchSize       int
	InterBatchDelay time.Duration
	CallTimeout     time.Duration
}

type base struct {
	name        string
	channel     domain.Channel
	transport   Transport
	limiter     *ratelimit.Limiter
	batchSize   int
	delay       time.Duration
	callTimeout time.Duration
	breaker     *gobreaker.CircuitBreaker
}

func newBase(cfg Config, ch domain.Channel, defaultBatch int, defaultDelay time.Duration) base {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatch
	}
	if cfg.InterBatchDelay <= 0 {
		cfg.InterBatchDelay = defaultDelay
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return base{
		name:        cfg.Name,
		channel:     ch,
		transport:   cfg.Transport,
		limiter:     cfg.Limiter,
		batchSize:   cfg.BatchSize,
		delay:       cfg.InterBatchDelay,
		callTimeout: cfg.CallTimeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 3,
			Timeout:     20 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 10 },
		}),
	}
}

func (b *base) Name() string                   { return b.name }
func (b *base) Channel() domain.Channel        { return b.channel }
func (b *base) BatchSize() int                 { return b.batchSize }
func (b *base) InterBatchDelay() time.Duration { return b.delay }
func (b *base) Limiter() *ratelimit.Limiter    { return b.limiter }

// deliver runs one transport call behind the circuit breaker and a per-call
// timeout, converting every failure mode into a failed result. A stalled
// upstream can hold a slot for at most callTimeout.
func (b *base) deliver(ctx context.Context, rcptID, to, subject, body string, meta map[string]string, cost float64) domain.DispatchResult {
	call := func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, b.callTimeout)
		defer cancel()
		return b.transport.Deliver(callCtx, Request{To: to, Subject: subject, Body: body, Meta: meta})
	}

	out, err := b.breaker.Execute(call)
	now := time.Now().UTC()
	if err != nil {
		msg := err.Error()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			msg = "provider circuit open"
		}
		return domain.DispatchResult{
			RecipientID: rcptID,
			Channel:     b.channel,
			Provider:    b.name,
			Error:       msg,
			Timestamp:   now,
		}
	}

	rec := out.(Receipt)
	return domain.DispatchResult{
		RecipientID:   rcptID,
		Channel:       b.channel,
		Provider:      b.name,
		Success:       true,
		ProviderMsgID: rec.MessageID,
		Cost:          cost,
		Timestamp:     now,
	}
}

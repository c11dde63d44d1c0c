// Package provider defines the uniform send contract every delivery provider
// implements, plus the channel senders (WhatsApp, SMS, Email) that handle
// destination formatting, cost calculation, and sub-batch bulk sending on
// top of a pluggable Transport.
package provider

import (
	"context"
	"time"

	"campusnotify/internal/domain"
	"campusnotify/internal/ratelimit"
)

// Transport is the wire-level capability a provider needs: deliver one
// payload, return a provider message id or an error. Ordinary delivery
// failures come back as errors here and are converted to failed
// DispatchResults by the sender; they never escape further.
type Transport interface {
	Deliver(ctx context.Context, req Request) (Receipt, error)
}

type Request struct {
	To      string
	Subject string
	Body    string
	Meta    map[string]string
}

type Receipt struct {
	MessageID string
	Detail    string
}

// Provider is one concrete third-party send capability for one channel.
// Implementations are safe for concurrent use; the only mutable state is
// the rate-limit bookkeeping behind Limiter.
type Provider interface {
	Name() string
	Channel() domain.Channel
	BatchSize() int
	InterBatchDelay() time.Duration
	Limiter() *ratelimit.Limiter

	// Cost is a deterministic function of content length and the
	// provider's pricing unit. Always >= 0.
	Cost(content string) float64

	// Send delivers to a single recipient. Formatting and transport
	// failures are reported in the result, never as an error.
	Send(ctx context.Context, rcpt domain.Recipient, content string, meta map[string]string) domain.DispatchResult

	// SendBulk partitions recipients into provider-sized sub-batches with
	// an inter-batch delay and returns the flattened, order-preserving
	// result list. The returned error is non-nil only for quota
	// exhaustion or caller cancellation.
	SendBulk(ctx context.Context, rcpts []domain.Recipient, content string, meta map[string]string) ([]domain.DispatchResult, error)
}

func failedResult(rcptID string, ch domain.Channel, name, errMsg string) domain.DispatchResult {
	return domain.DispatchResult{
		RecipientID: rcptID,
		Channel:     ch,
		Provider:    name,
		Success:     false,
		Error:       errMsg,
		Timestamp:   time.Now().UTC(),
	}
}

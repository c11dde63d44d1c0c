// Package dispatch turns one validated message into concrete deliveries:
// per-channel fallback chains drive the shared bulk engine, and the facade
// aggregates everything into a DispatchReport.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campusnotify/internal/domain"
	"campusnotify/internal/observability"
	"campusnotify/internal/template"
	"campusnotify/internal/util"
	"campusnotify/internal/validate"
)

// ChannelProgressFunc reports per-channel progress for UI indicators.
type ChannelProgressFunc func(channel domain.Channel, done, total int)

// Dispatcher is the single entry point the composer calls. Chains are
// configured once at construction and safe for concurrent Dispatch calls.
type Dispatcher struct {
	Chains   map[domain.Channel]*Chain
	Progress ChannelProgressFunc
	now      func() time.Time
}

func New(chains map[domain.Channel]*Chain) *Dispatcher {
	return &Dispatcher{Chains: chains, now: time.Now}
}

// Dispatch validates msg and, if clean, drives every selected channel
// sequentially through its fallback chain. Hard validation errors return
// before any provider call. Channel-level failures (all providers failed,
// quota exhausted) land in the report, not in the returned error.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) (domain.DispatchReport, error) {
	now := time.Now
	if d.now != nil {
		now = d.now
	}

	res := validate.Check(msg, now())
	if !res.OK() {
		observability.Dispatches.WithLabelValues("validation_failed").Inc()
		return domain.DispatchReport{}, domain.ValidationFailedError{Issues: res.Errors}
	}
	for _, w := range res.Warnings {
		slog.Warn("dispatch validation warning", "field", w.Field, "message", w.Message)
	}

	report := domain.DispatchReport{
		ID:        util.NewDispatchID(),
		Channels:  make(map[domain.Channel]domain.BatchResult, len(msg.Channels)),
		StartedAt: now().UTC(),
		Success:   true,
	}
	rcpts := msg.Selection.Resolve()

	// Channels run sequentially relative to each other; only sends within
	// a sub-batch are concurrent.
	for _, ch := range msg.Channels {
		if err := ctx.Err(); err != nil {
			d.failChannel(&report, ch, "cancelled before channel started")
			continue
		}

		chain, ok := d.Chains[ch]
		if !ok || len(chain.Providers) == 0 {
			d.failChannel(&report, ch, "no provider configured for channel")
			continue
		}

		contents := make([]string, len(rcpts))
		for i, r := range rcpts {
			contents[i] = template.Render(msg.Content[ch], templateData(r, msg.Vars))
		}
		meta := map[string]string{"dispatchId": report.ID}
		if ch == domain.ChannelEmail {
			meta["subject"] = template.Render(msg.Subject, msg.Vars)
		}

		var progress ProgressFunc
		if d.Progress != nil {
			progress = func(done, total int) { d.Progress(ch, done, total) }
		}

		batch, err := chain.Run(ctx, rcpts, contents, meta, progress)
		report.Channels[ch] = batch
		report.TotalCost += batch.TotalCost
		report.Attempts += len(batch.Results)
		if batch.Sent == 0 {
			report.Success = false
		}
		if err != nil {
			if report.ChannelErr == nil {
				report.ChannelErr = make(map[domain.Channel]string)
			}
			report.ChannelErr[ch] = err.Error()
			logChannelError(ch, err)
		}
	}

	report.FinishedAt = now().UTC()
	switch {
	case report.Success:
		observability.Dispatches.WithLabelValues("ok").Inc()
	case anyChannelSent(report):
		observability.Dispatches.WithLabelValues("partial").Inc()
	default:
		observability.Dispatches.WithLabelValues("failed").Inc()
	}
	return report, nil
}

func (d *Dispatcher) failChannel(report *domain.DispatchReport, ch domain.Channel, reason string) {
	report.Success = false
	report.Channels[ch] = domain.BatchResult{Channel: ch}
	if report.ChannelErr == nil {
		report.ChannelErr = make(map[domain.Channel]string)
	}
	report.ChannelErr[ch] = reason
}

func anyChannelSent(report domain.DispatchReport) bool {
	for _, b := range report.Channels {
		if b.Sent > 0 {
			return true
		}
	}
	return false
}

func logChannelError(ch domain.Channel, err error) {
	var apf domain.AllProvidersFailedError
	switch {
	case errors.Is(err, domain.ErrQuotaExhausted):
		slog.Error("channel hit provider quota", "channel", ch, "err", err)
	case errors.As(err, &apf):
		slog.Error("all providers failed for channel", "channel", ch, "providers", apf.Providers)
	default:
		slog.Warn("channel dispatch incomplete", "channel", ch, "err", err)
	}
}

// templateData builds the per-recipient interpolation map from the
// recipient's fields plus message-level vars (schoolName and friends).
// Recipient fields win on collision.
func templateData(r domain.Recipient, extra map[string]string) map[string]string {
	data := map[string]string{
		"name":       r.Name,
		"parentName": r.Name,
		"email":      r.Email,
		"phone":      r.Phone,
		"grade":      r.Grade,
	}
	for k, v := range extra {
		if _, taken := data[k]; !taken {
			data[k] = v
		}
	}
	return data
}

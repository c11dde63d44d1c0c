package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"campusnotify/internal/domain"
	"campusnotify/internal/observability"
	"campusnotify/internal/provider"
)

// Chain is the ordered provider list for one channel. The next provider is
// tried only when the previous one yields zero successful deliveries for
// the whole batch: a zero-success batch suggests a systemic provider
// outage rather than per-recipient issues.
//
// FallbackOnPartialFailure switches to retrying just the failed subset on
// the next provider after a partial success. Default off: a recipient is
// never sent the same message twice by two providers, and partially failed
// batches are accepted as final.
type Chain struct {
	Channel                  domain.Channel
	Providers                []provider.Provider
	FallbackOnPartialFailure bool
}

// ProgressFunc reports channel-level progress over the full recipient list.
type ProgressFunc func(done, total int)

// Run drives the chain for one channel's recipient list. The returned
// BatchResult always has one result per recipient, in input order. The
// error is an AllProvidersFailedError when the chain is exhausted with
// zero successes, a quota error when the daily ceiling cut the final
// attempt short, or the context error on cancellation.
func (c *Chain) Run(ctx context.Context, rcpts []domain.Recipient, contents []string, meta map[string]string, progress ProgressFunc) (domain.BatchResult, error) {
	batch := domain.BatchResult{Channel: c.Channel}
	master := make([]domain.DispatchResult, len(rcpts))
	attempted := make([]bool, len(rcpts))

	pending := make([]int, len(rcpts))
	for i := range pending {
		pending[i] = i
	}

	var runErr error
	for pi, p := range c.Providers {
		if len(pending) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		subset := make([]domain.Recipient, len(pending))
		subContents := make([]string, len(pending))
		for i, idx := range pending {
			subset[i] = rcpts[idx]
			subContents[i] = contents[idx]
		}

		done := len(rcpts) - len(pending)
		results, err := provider.RunBulk(ctx, p, subset, subContents, meta, func(n, _ int) {
			if progress != nil {
				progress(done+n, len(rcpts))
			}
		})
		runErr = err

		successes := 0
		for i, res := range results {
			master[pending[i]] = res
			attempted[pending[i]] = true
			if res.Success {
				successes++
			}
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if successes > 0 && !c.FallbackOnPartialFailure {
			break
		}

		var remaining []int
		for _, idx := range pending {
			if !master[idx].Success {
				remaining = append(remaining, idx)
			}
		}
		pending = remaining

		if len(pending) > 0 && pi < len(c.Providers)-1 {
			next := c.Providers[pi+1]
			observability.Fallbacks.WithLabelValues(string(c.Channel), p.Name(), next.Name()).Inc()
			slog.Warn("falling back to next provider",
				"channel", c.Channel,
				"from", p.Name(),
				"to", next.Name(),
				"remaining", len(pending),
				"successes", successes,
			)
		}
	}

	// Recipients never attempted (cancellation, quota cutoff, exhausted
	// chain on a subset) still get a result so index correspondence holds.
	for i := range master {
		if !attempted[i] {
			master[i] = domain.DispatchResult{
				RecipientID: rcpts[i].ID,
				Channel:     c.Channel,
				Error:       "not attempted",
			}
		}
	}

	batch.Results = master
	batch.Recount()

	if batch.Sent == 0 && runErr == nil {
		names := make([]string, len(c.Providers))
		for i, p := range c.Providers {
			names[i] = p.Name()
		}
		runErr = domain.AllProvidersFailedError{Channel: c.Channel, Providers: names}
	}
	return batch, runErr
}

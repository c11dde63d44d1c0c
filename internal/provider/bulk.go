package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campusnotify/internal/domain"
	"campusnotify/internal/observability"
)

// ProgressFunc is invoked after each completed sub-batch.
type ProgressFunc func(done, total int)

// RunBulk is the shared bulk-send engine: recipients are partitioned into
// provider-sized sub-batches; sub-batches run strictly sequentially with an
// inter-batch delay; sends within a sub-batch run concurrently but results
// are collected by index so output order always matches input order.
//
// Cancellation is checked between sub-batches: in-flight sends finish,
// later sub-batches are skipped. Quota exhaustion on the provider's daily
// window stops the run the same way. Both are reported through the
// returned error; every attempted recipient still has a result.
//
// contents carries the per-recipient rendered body, aligned with rcpts.
func RunBulk(ctx context.Context, p Provider, rcpts []domain.Recipient, contents []string, meta map[string]string, progress ProgressFunc) ([]domain.DispatchResult, error) {
	total := len(rcpts)
	if len(contents) != total {
		return nil, fmt.Errorf("contents length %d does not match recipients %d", len(contents), total)
	}
	results := make([]domain.DispatchResult, 0, total)
	size := p.BatchSize()
	if size <= 0 {
		size = 1
	}

	var runErr error
	for start := 0; start < total; start += size {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if start > 0 {
			if err := sleepCtx(ctx, p.InterBatchDelay()); err != nil {
				runErr = err
				break
			}
		}

		end := start + size
		if end > total {
			end = total
		}
		chunk := rcpts[start:end]
		chunkRes := make([]domain.DispatchResult, len(chunk))

		var wg sync.WaitGroup
		var mu sync.Mutex
		var quotaErr error
		for i, rcpt := range chunk {
			wg.Add(1)
			go func(i int, rcpt domain.Recipient, content string) {
				defer wg.Done()

				if lim := p.Limiter(); lim != nil {
					if err := lim.Acquire(ctx); err != nil {
						chunkRes[i] = failedResult(rcpt.ID, p.Channel(), p.Name(), err.Error())
						if errors.Is(err, domain.ErrQuotaExhausted) {
							mu.Lock()
							quotaErr = err
							mu.Unlock()
						}
						observability.ProviderSends.WithLabelValues(p.Name(), string(p.Channel()), "rate_limited").Inc()
						return
					}
				}

				started := time.Now()
				res := p.Send(ctx, rcpt, content, meta)
				observability.SendLatency.WithLabelValues(p.Name()).Observe(time.Since(started).Seconds())
				if res.Success {
					observability.ProviderSends.WithLabelValues(p.Name(), string(p.Channel()), "ok").Inc()
					observability.DispatchCost.WithLabelValues(p.Name(), string(p.Channel())).Add(res.Cost)
				} else {
					observability.ProviderSends.WithLabelValues(p.Name(), string(p.Channel()), "error").Inc()
				}
				chunkRes[i] = res
			}(i, rcpt, contents[start+i])
		}
		wg.Wait()

		results = append(results, chunkRes...)
		if progress != nil {
			progress(len(results), total)
		}
		if quotaErr != nil {
			observability.QuotaExhausted.WithLabelValues(p.Name()).Inc()
			slog.Warn("provider quota exhausted, stopping batch",
				"provider", p.Name(),
				"channel", p.Channel(),
				"attempted", len(results),
				"total", total,
			)
			runErr = quotaErr
			break
		}
	}

	if runErr != nil && !errors.Is(runErr, domain.ErrQuotaExhausted) {
		runErr = fmt.Errorf("bulk send aborted after %d of %d recipients: %w", len(results), total, runErr)
	}
	return results, runErr
}

// RepeatContent expands a single body into the aligned per-recipient slice
// RunBulk expects.
func RepeatContent(content string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = content
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

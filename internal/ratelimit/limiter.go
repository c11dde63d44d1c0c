// Package ratelimit gates provider sends with two concurrent windows: a
// short per-second ceiling and a long per-minute or per-day ceiling. Short
// and per-minute limits back-pressure callers by blocking; the daily quota
// is the one hard failure, since suspending a caller for a day is not
// acceptable back-pressure.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"campusnotify/internal/domain"
)

type Config struct {
	Provider     string
	MaxPerSecond int
	LongLimit    int
	LongWindow   time.Duration
	// BlockOnLong makes callers wait for the long window to roll over
	// instead of failing. Use for per-minute ceilings; leave false for
	// daily quotas.
	BlockOnLong bool
}

type Limiter struct {
	provider    string
	short       *rate.Limiter
	longLimit   int
	longWindow  time.Duration
	blockOnLong bool

	mu        sync.Mutex
	longCount int
	longStart time.Time

	now func() time.Time
}

func New(cfg Config) *Limiter {
	if cfg.MaxPerSecond <= 0 {
		cfg.MaxPerSecond = 1
	}
	if cfg.LongLimit <= 0 {
		cfg.LongLimit = 1
	}
	if cfg.LongWindow <= 0 {
		cfg.LongWindow = 24 * time.Hour
	}
	return &Limiter{
		provider:    cfg.Provider,
		short:       rate.NewLimiter(rate.Limit(cfg.MaxPerSecond), cfg.MaxPerSecond),
		longLimit:   cfg.LongLimit,
		longWindow:  cfg.LongWindow,
		blockOnLong: cfg.BlockOnLong,
		now:         time.Now,
	}
}

// Acquire blocks until a send slot is available, then consumes it. It
// returns domain.ErrQuotaExhausted (wrapped) when a non-blocking long
// window is full, or the context error if the caller gives up while
// waiting. The long-window check-and-increment is atomic under the mutex:
// concurrent callers can never jointly exceed the ceiling.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		if l.longStart.IsZero() || now.Sub(l.longStart) >= l.longWindow {
			l.longCount = 0
			l.longStart = now
		}
		if l.longCount < l.longLimit {
			l.longCount++
			l.mu.Unlock()
			break
		}
		if !l.blockOnLong {
			l.mu.Unlock()
			return domain.QuotaError{Provider: l.provider}
		}
		wait := l.longWindow - now.Sub(l.longStart)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.short.Wait(ctx)
}

// Snapshot of the long-window counter, for metrics and ops endpoints.
type Snapshot struct {
	Provider    string
	LongCount   int
	LongLimit   int
	WindowStart time.Time
}

func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Provider:    l.provider,
		LongCount:   l.longCount,
		LongLimit:   l.longLimit,
		WindowStart: l.longStart,
	}
}

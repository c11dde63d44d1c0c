// Package schedule arms one-shot timers for messages composed with a
// future scheduledAt. State is in-memory only: a restart drops pending
// sends, which matches the engine's no-durable-jobs contract. Callers who
// need durability must re-submit after the fact.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Scheduler struct {
	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

func New() *Scheduler {
	return &Scheduler{pending: make(map[string]*time.Timer)}
}

// At arms a one-shot run of fn at the given time. fn runs on its own
// goroutine with the supplied base context.
func (s *Scheduler) At(ctx context.Context, id string, at time.Time, fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	s.pending[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()

		if ctx.Err() != nil {
			slog.Info("scheduled dispatch skipped, shutting down", "id", id)
			return
		}
		fn(ctx)
	})
	slog.Info("dispatch scheduled", "id", id, "at", at, "in", delay)
}

// Cancel stops a pending run. Returns false if it already fired or never
// existed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	return t.Stop()
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close stops every pending timer; no fn runs after Close returns.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
}

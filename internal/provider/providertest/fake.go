// Package providertest provides a deterministic Transport fake for tests:
// scripted per-destination outcomes, call recording, optional latency.
package providertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"campusnotify/internal/provider"
)

type FakeTransport struct {
	// FailAll makes every delivery fail with Err (or a generic error).
	FailAll bool
	// FailTo maps destination -> error message for selective failures.
	FailTo map[string]string
	// Err, when set with FailAll, is returned as the transport error.
	Err error
	// Latency is applied to every call before responding.
	Latency time.Duration
	// Script, when set, overrides all other knobs.
	Script func(req provider.Request) (provider.Receipt, error)

	mu    sync.Mutex
	calls []provider.Request
	seq   int
}

func (f *FakeTransport) Deliver(ctx context.Context, req provider.Request) (provider.Receipt, error) {
	if f.Latency > 0 {
		select {
		case <-ctx.Done():
			return provider.Receipt{}, ctx.Err()
		case <-time.After(f.Latency):
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.seq++
	n := f.seq
	f.mu.Unlock()

	if f.Script != nil {
		return f.Script(req)
	}
	if f.FailAll {
		if f.Err != nil {
			return provider.Receipt{}, f.Err
		}
		return provider.Receipt{}, errors.New("simulated provider outage")
	}
	if msg, ok := f.FailTo[req.To]; ok {
		return provider.Receipt{}, errors.New(msg)
	}
	return provider.Receipt{MessageID: fmt.Sprintf("fake-%d", n)}, nil
}

// Calls returns a copy of every request seen so far.
func (f *FakeTransport) Calls() []provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]provider.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeTransport) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

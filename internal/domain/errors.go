package domain

import (
	"errors"
	"fmt"
)

// ErrQuotaExhausted means a provider's long-window (daily) ceiling was hit.
// No further sends on that provider can succeed this period, so it is fatal
// for the provider rather than retryable per recipient.
var ErrQuotaExhausted = errors.New("quota exhausted for this period")

// QuotaError wraps ErrQuotaExhausted with the provider that hit the ceiling.
type QuotaError struct {
	Provider string
}

func (e QuotaError) Error() string {
	return fmt.Sprintf("provider %s: quota exhausted for this period", e.Provider)
}

func (e QuotaError) Unwrap() error { return ErrQuotaExhausted }

// AllProvidersFailedError means the fallback chain for a channel was
// exhausted with zero successful deliveries.
type AllProvidersFailedError struct {
	Channel   Channel
	Providers []string
}

func (e AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all providers failed for channel %s (tried %d)", e.Channel, len(e.Providers))
}

// ValidationFailedError is returned by Dispatch when hard validation errors
// exist; no provider call has been made.
type ValidationFailedError struct {
	Issues []Issue
}

func (e ValidationFailedError) Error() string {
	if len(e.Issues) == 1 {
		return "validation failed: " + e.Issues[0].Message
	}
	return fmt.Sprintf("validation failed with %d errors", len(e.Issues))
}

// Issue is one validation finding. Warnings never block dispatch.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

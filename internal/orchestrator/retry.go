package orchestrator

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/censeo/internal/modules"
)

// RetryPolicy controls retry behavior for provider calls and the outer
// workflow.
type RetryPolicy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	JitterFraction float64
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// exponential backoff from 500ms capped at 8s, plus 20% jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       8 * time.Second,
		JitterFraction: 0.2,
	}
}

// Backoff returns the delay before the given retry. Attempt is
// 1-based: Backoff(1) is the delay after the first failure.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	if p.JitterFraction > 0 {
		jitter := delay * p.JitterFraction * (2*rand.Float64() - 1)
		delay += jitter
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

// Execute runs fn up to MaxAttempts times, backing off between
// attempts. It stops early on non-retryable errors and on context
// cancellation. Rate-limit errors that advertise a retry-after delay
// override the computed backoff when longer.
func (p RetryPolicy) Execute(ctx context.Context, logger arbor.ILogger, operation string, fn func(ctx context.Context) error) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}

		if !IsRetryable(lastErr) || attempt == p.MaxAttempts {
			return attempt, lastErr
		}
		if ctx.Err() != nil {
			return attempt, lastErr
		}

		delay := p.Backoff(attempt)
		var rateLimited *modules.RateLimitError
		if errors.As(lastErr, &rateLimited) && rateLimited.RetryAfter > delay {
			delay = rateLimited.RetryAfter
		}

		if logger != nil {
			logger.Warn().
				Str("operation", operation).
				Int("attempt", attempt).
				Str("delay", delay.String()).
				Err(lastErr).
				Msg("Retrying after failure")
		}

		select {
		case <-ctx.Done():
			return attempt, lastErr
		case <-time.After(delay):
		}
	}

	return p.MaxAttempts, lastErr
}

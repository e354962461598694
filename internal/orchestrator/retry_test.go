package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/censeo/internal/common"
	"github.com/ternarybob/censeo/internal/modules"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		BaseDelay:      time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		JitterFraction: 0,
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts:    5,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       8 * time.Second,
		JitterFraction: 0,
	}

	assert.Equal(t, 500*time.Millisecond, policy.Backoff(1))
	assert.Equal(t, time.Second, policy.Backoff(2))
	assert.Equal(t, 2*time.Second, policy.Backoff(3))
	assert.Equal(t, 8*time.Second, policy.Backoff(5))
	assert.Equal(t, 8*time.Second, policy.Backoff(10))
}

func TestBackoffJitterStaysInBounds(t *testing.T) {
	policy := DefaultRetryPolicy()

	for attempt := 1; attempt <= 5; attempt++ {
		base := float64(500*time.Millisecond) * float64(int(1)<<(attempt-1))
		if base > float64(8*time.Second) {
			base = float64(8 * time.Second)
		}
		for i := 0; i < 20; i++ {
			delay := float64(policy.Backoff(attempt))
			assert.GreaterOrEqual(t, delay, base*0.8-1)
			assert.LessOrEqual(t, delay, base*1.2+1)
		}
	}
}

func TestExecuteSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy().Execute(context.Background(), common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &modules.APIError{StatusCode: http.StatusInternalServerError, Message: "transient"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestExecuteStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	apiErr := &modules.APIError{StatusCode: http.StatusForbidden, Message: "invalid key"}

	attempts, err := fastPolicy().Execute(context.Background(), common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		return apiErr
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls, "4xx errors must not be retried")
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy().Execute(context.Background(), common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		return errors.New("network hiccup")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestExecuteHonorsRateLimitRetryAfter(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, JitterFraction: 0}

	calls := 0
	started := time.Now()
	_, err := policy.Execute(context.Background(), common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &modules.RateLimitError{RetryAfter: 50 * time.Millisecond}
		}
		return nil
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
}

func TestExecuteStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := fastPolicy().Execute(ctx, common.GetLogger(), "test", func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("failed while caller gave up")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

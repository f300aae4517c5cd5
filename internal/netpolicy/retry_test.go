package netpolicy

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticlesHarvester/internal/scrape"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Factor:      2,
	}
}

func TestRetrySucceedsWithinBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{URL: "http://x", Status: "503 Service Unavailable", Code: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustion(t *testing.T) {
	t.Parallel()

	calls := 0
	cause := &StatusError{URL: "http://x", Status: "502 Bad Gateway", Code: 502}
	err := fastPolicy(3).Do(context.Background(), func(context.Context) error {
		calls++
		return cause
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var status *StatusError
	assert.True(t, errors.As(err, &status), "exhaustion must keep the underlying cause")
}

func TestRetryPermanentFailureIsImmediate(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(5).Do(context.Background(), func(context.Context) error {
		calls++
		return &StatusError{URL: "http://x", Status: "404 Not Found", Code: 404}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}

func TestRetryHonorsRetryAfterHint(t *testing.T) {
	t.Parallel()

	hint := 30 * time.Millisecond
	calls := 0
	start := time.Now()
	err := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Second, Factor: 2}.
		Do(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return &scrape.RateLimitedError{Source: "arxiv", RetryAfter: hint}
			}
			return nil
		})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), hint, "server hint must override the computed backoff")
}

func TestRetryStopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond}.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return &StatusError{URL: "http://x", Status: "500", Code: 500}
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestTransientClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, Transient(&StatusError{Code: http.StatusInternalServerError}))
	assert.True(t, Transient(&StatusError{Code: http.StatusTooManyRequests}))
	assert.True(t, Transient(&scrape.RateLimitedError{Source: "ssrn"}))
	assert.False(t, Transient(&StatusError{Code: http.StatusNotFound}))
	assert.False(t, Transient(&StatusError{Code: http.StatusForbidden}))
	assert.False(t, Transient(context.Canceled))
	assert.False(t, Transient(nil))

	// An http.Client timeout unwraps to context.DeadlineExceeded but must
	// stay retryable.
	timeout := &url.Error{Op: "Get", URL: "http://example.org", Err: context.DeadlineExceeded}
	assert.True(t, Transient(timeout))
	assert.False(t, Transient(&url.Error{Op: "Get", URL: "http://example.org", Err: context.Canceled}))
}

package netpolicy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"ArticlesHarvester/internal/scrape"
)

// StatusError carries a non-success HTTP status for retry classification.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %s", e.URL, e.Status)
}

// RetryPolicy is a value object governing transient-failure recovery. It is
// shared infrastructure: every adapter and the downloader compose it
// identically, none keeps a private retry loop.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Factor      float64
}

// DefaultRetryPolicy mirrors the pacing the upstream platforms tolerate:
// three attempts, delays doubling from two seconds, capped at thirty.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Factor:      2,
	}
}

// Do runs op, retrying transient failures with exponential backoff. A 429
// carrying a Retry-After hint overrides the computed delay. Permanent
// failures return immediately with the cause attached; exhausting attempts
// returns the last transient cause wrapped for the caller to reclassify as
// source-unavailable.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		wait := delay
		var rl *scrape.RateLimitedError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			wait = rl.RetryAfter
		}
		if p.MaxDelay > 0 && wait > p.MaxDelay {
			wait = p.MaxDelay
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		factor := p.Factor
		if factor <= 1 {
			factor = 2
		}
		delay = time.Duration(float64(delay) * factor)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return fmt.Errorf("retries exhausted after %d attempts: %w", attempts, lastErr)
}

// Transient reports whether the failure is likely to succeed on retry:
// timeouts, connection errors, rate-limit responses, and 5xx statuses.
// Context cancellation and other 4xx statuses are permanent.
func Transient(err error) bool {
	if err == nil {
		return false
	}

	// http.Client timeouts satisfy errors.Is(err, context.DeadlineExceeded),
	// so they must be classified before the context sentinels: a slow
	// upstream is retryable, a cancelled caller is not.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rl *scrape.RateLimitedError
	if errors.As(err, &rl) {
		return true
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Code >= http.StatusInternalServerError ||
			status.Code == http.StatusTooManyRequests
	}

	if errors.As(err, &netErr) {
		return true
	}

	// url.Error and transport-level failures land here.
	return true
}

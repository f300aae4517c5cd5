package netpolicy

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultInterval is the minimum gap between requests for sources without an
// explicit configuration.
const defaultInterval = 2 * time.Second

// Limiter paces outbound requests per bucket. Buckets are independent: one
// per source for queries plus one per source for downloads, so a slow PDF
// fetch never starves metadata queries and sources never block each other.
type Limiter struct {
	mu        sync.Mutex
	intervals map[string]time.Duration
	buckets   map[string]*rate.Limiter
	retryAt   map[string]time.Time
}

// NewLimiter builds a limiter with per-bucket minimum intervals; buckets not
// listed fall back to defaultInterval.
func NewLimiter(intervals map[string]time.Duration) *Limiter {
	copied := make(map[string]time.Duration, len(intervals))
	for name, interval := range intervals {
		copied[name] = interval
	}
	return &Limiter{
		intervals: copied,
		buckets:   map[string]*rate.Limiter{},
		retryAt:   map[string]time.Time{},
	}
}

// Wait blocks until the bucket's minimum inter-request interval has elapsed
// and any recorded server backoff has passed. The wait is scoped to ctx.
func (l *Limiter) Wait(ctx context.Context, bucket string) error {
	l.mu.Lock()
	limiter := l.buckets[bucket]
	if limiter == nil {
		interval := l.intervals[bucket]
		if interval <= 0 {
			interval = defaultInterval
		}
		limiter = rate.NewLimiter(rate.Every(interval), 1)
		l.buckets[bucket] = limiter
	}
	retryAt := l.retryAt[bucket]
	l.mu.Unlock()

	if until := time.Until(retryAt); until > 0 {
		timer := time.NewTimer(until)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return limiter.Wait(ctx)
}

// RecordRetryAfter registers a server-specified backoff for a bucket, set
// from a 429 Retry-After hint. Subsequent waits block until it passes.
func (l *Limiter) RecordRetryAfter(bucket string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	at := time.Now().Add(delay)
	if at.After(l.retryAt[bucket]) {
		l.retryAt[bucket] = at
	}
}

package netpolicy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ArticlesHarvester/internal/scrape"
)

const userAgent = "ArticlesHarvester/1.0 (academic research collector)"

// Client is the single outbound HTTP path for all source adapters and the
// artifact downloader. Every request waits on the per-bucket rate limiter
// first and transient failures go through the shared retry policy.
type Client struct {
	http    *http.Client
	limiter *Limiter
	retry   RetryPolicy
}

// NewClient wires the politeness stack; a nil httpClient gets a 30s timeout
// default so every network call has a bounded maximum wait.
func NewClient(httpClient *http.Client, limiter *Limiter, retry RetryPolicy) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if limiter == nil {
		limiter = NewLimiter(nil)
	}
	return &Client{http: httpClient, limiter: limiter, retry: retry}
}

// Get fetches rawURL under the named bucket and returns the response body
// and headers. Non-2xx statuses become errors: 429 maps to RateLimitedError
// (honoring Retry-After), 5xx to a transient StatusError, remaining 4xx to a
// permanent one.
func (c *Client) Get(ctx context.Context, bucket, rawURL string) ([]byte, http.Header, error) {
	var (
		body   []byte
		header http.Header
	)

	err := c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx, bucket); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return &StatusError{URL: rawURL, Status: "invalid request", Code: http.StatusBadRequest}
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w", rawURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			c.limiter.RecordRetryAfter(bucket, retryAfter)
			return &scrape.RateLimitedError{Source: bucket, RetryAfter: retryAfter}
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return &StatusError{URL: rawURL, Status: resp.Status, Code: resp.StatusCode}
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s: %w", rawURL, err)
		}

		body = payload
		header = resp.Header
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return body, header, nil
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if until := time.Until(at); until > 0 {
			return until
		}
	}
	return 0
}

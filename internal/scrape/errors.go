package scrape

import (
	"fmt"
	"time"
)

// SourceUnavailableError marks a source that stayed unreachable after retry
// exhaustion. The run continues with the remaining sources.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// ParseError marks one response page that could not be decoded into the
// expected shape. The page is skipped; scraping continues.
type ParseError struct {
	Source string
	Page   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("source %s: parse %s: %v", e.Source, e.Page, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RateLimitedError is raised on a 429 response. RetryAfter carries the
// server-specified hint when present; zero means back off normally.
type RateLimitedError struct {
	Source     string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("source %s rate limited, retry after %s", e.Source, e.RetryAfter)
	}
	return fmt.Sprintf("source %s rate limited", e.Source)
}

// DownloadError marks a failed artifact fetch or store. The record is kept
// without an artifact.
type DownloadError struct {
	Source    string
	ArticleID string
	Err       error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s/%s: %v", e.Source, e.ArticleID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ConfigError is fatal and raised before any network activity.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration: " + e.Reason
}

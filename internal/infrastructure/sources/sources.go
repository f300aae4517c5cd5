// Package sources contains one adapter per external platform. Adapters build
// platform-specific requests, paginate bounded result pages, and normalize
// responses into domain.ArticleRecord values. All network traffic goes
// through the shared politeness client injected as ports.Fetcher.
package sources

import (
	"net/url"
	"strings"

	"ArticlesHarvester/internal/scrape"
)

const (
	summaryLimit = 500
	idLimit      = 40
)

// truncate caps text at limit runes.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// absoluteURL resolves href against base when the platform returns relative
// links.
func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return parsed.ResolveReference(ref).String()
}

// deriveArticleID builds a stable source-local identifier for platforms that
// expose none: the last URL path segment when available, otherwise a
// normalized-title fingerprint. Never a random value.
func deriveArticleID(pageURL, title string) string {
	if pageURL != "" {
		if parsed, err := url.Parse(pageURL); err == nil {
			segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
			if last := segments[len(segments)-1]; last != "" {
				return truncate(last, idLimit)
			}
		}
	}
	if fp := scrape.NormalizeTitle(title); fp != "" {
		return truncate(fp, idLimit)
	}
	return ""
}

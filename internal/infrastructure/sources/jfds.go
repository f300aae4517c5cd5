package sources

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
)

const jfdsBaseURL = "https://www.pm-research.com/content/iijjfds"

// JFDSSource scrapes the Journal of Financial Data Science table of
// contents. The journal publishes nothing outside the finance/data-science
// intersection, so the adapter opts out of strict filtering.
type JFDSSource struct {
	fetcher ports.Fetcher
	baseURL string
	logger  *slog.Logger
}

var (
	_ scrape.Source         = (*JFDSSource)(nil)
	_ scrape.AlwaysRelevant = (*JFDSSource)(nil)
)

// NewJFDSSource wires the shared politeness client.
func NewJFDSSource(fetcher ports.Fetcher, logger *slog.Logger) *JFDSSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &JFDSSource{fetcher: fetcher, baseURL: jfdsBaseURL, logger: logger}
}

// Name identifies the adapter inside the registry.
func (j *JFDSSource) Name() string {
	return "jfds"
}

// AlwaysRelevant marks every JFDS article as in-domain.
func (j *JFDSSource) AlwaysRelevant() bool {
	return true
}

// Search fetches the journal listing. The journal site has no keyword search
// worth scraping; the listing is returned as-is and the orchestrator's dedup
// keeps repeat queries idempotent.
func (j *JFDSSource) Search(ctx context.Context, q scrape.Query) (scrape.SearchResult, error) {
	var result scrape.SearchResult

	body, _, err := j.fetcher.Get(ctx, j.Name(), j.baseURL)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, &scrape.SourceUnavailableError{Source: j.Name(), Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		parseErr := &scrape.ParseError{Source: j.Name(), Page: "toc", Err: err}
		result.Warnings = append(result.Warnings, domain.Warning{
			Source:  j.Name(),
			Query:   q.Keywords,
			Context: parseErr.Page,
			Err:     parseErr,
		})
		return result, nil
	}

	limit := q.MaxResults
	if limit <= 0 {
		limit = arxivDefaults
	}

	doc.Find("div.article, div.toc-item, div.highwire-cite").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		title := strings.TrimSpace(entry.Find("h3, h4, span.highwire-cite-title").First().Text())
		if title == "" {
			title = strings.TrimSpace(entry.Find("a").First().Text())
		}
		if len(title) < 10 {
			return true
		}

		href, _ := entry.Find("a[href]").First().Attr("href")
		pageURL := absoluteURL(j.baseURL, href)

		articleID := deriveArticleID(pageURL, title)
		if articleID == "" {
			return true
		}

		result.Records = append(result.Records, domain.ArticleRecord{
			Source:    j.Name(),
			ArticleID: articleID,
			Title:     title,
			URL:       pageURL,
		})
		return len(result.Records) < limit
	})

	return result, nil
}

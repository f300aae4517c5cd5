package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
)

const (
	scholarBaseURL  = "https://scholar.google.com/scholar"
	scholarDefaults = 20
)

// ScholarSource scrapes a single Google Scholar result page. Scholar
// throttles aggressively, so the adapter never paginates and leans on the
// shared limiter's long interval for this bucket.
type ScholarSource struct {
	fetcher ports.Fetcher
	baseURL string
	logger  *slog.Logger
}

var _ scrape.Source = (*ScholarSource)(nil)

// NewScholarSource wires the shared politeness client.
func NewScholarSource(fetcher ports.Fetcher, logger *slog.Logger) *ScholarSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScholarSource{fetcher: fetcher, baseURL: scholarBaseURL, logger: logger}
}

// Name identifies the adapter inside the registry.
func (s *ScholarSource) Name() string {
	return "scholar"
}

// Search fetches the first result page and extracts its entries.
func (s *ScholarSource) Search(ctx context.Context, q scrape.Query) (scrape.SearchResult, error) {
	var result scrape.SearchResult

	values := url.Values{}
	values.Set("q", q.Keywords)
	values.Set("hl", "en")
	values.Set("as_sdt", "0,5")
	pageURL := s.baseURL + "?" + values.Encode()

	body, _, err := s.fetcher.Get(ctx, s.Name(), pageURL)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		return result, &scrape.SourceUnavailableError{Source: s.Name(), Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		parseErr := &scrape.ParseError{Source: s.Name(), Page: "page=1", Err: fmt.Errorf("parse document: %w", err)}
		result.Warnings = append(result.Warnings, domain.Warning{
			Source:  s.Name(),
			Query:   q.Keywords,
			Context: parseErr.Page,
			Err:     parseErr,
		})
		return result, nil
	}

	limit := q.MaxResults
	if limit <= 0 {
		limit = scholarDefaults
	}

	doc.Find("div.gs_ri").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		titleElem := entry.Find("h3.gs_rt").First()
		title := cleanScholarTitle(titleElem.Text())
		if title == "" {
			return true
		}

		href, _ := titleElem.Find("a").First().Attr("href")
		summary := strings.TrimSpace(entry.Find("div.gs_rs").First().Text())
		byline := strings.TrimSpace(entry.Find("div.gs_a").First().Text())

		var pdfURL string
		if link, ok := entry.Parent().Find(`a[href$=".pdf"]`).First().Attr("href"); ok && strings.HasPrefix(link, "http") {
			pdfURL = link
		}

		articleID := deriveArticleID(href, title)
		if articleID == "" {
			return true
		}

		record := domain.ArticleRecord{
			Source:    s.Name(),
			ArticleID: articleID,
			Title:     title,
			Summary:   truncate(summary, summaryLimit),
			URL:       href,
			PDFURL:    pdfURL,
		}
		if byline != "" {
			record.Authors = []string{byline}
		}

		result.Records = append(result.Records, record)
		return len(result.Records) < limit
	})

	return result, nil
}

// cleanScholarTitle drops the [PDF]/[HTML]/[BOOK] markers Scholar prefixes
// onto result titles.
func cleanScholarTitle(raw string) string {
	title := strings.TrimSpace(raw)
	for strings.HasPrefix(title, "[") {
		end := strings.Index(title, "]")
		if end < 0 {
			break
		}
		title = strings.TrimSpace(title[end+1:])
	}
	return title
}

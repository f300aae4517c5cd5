package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
)

const (
	ssrnBaseURL  = "https://papers.ssrn.com/sol3/results.cfm"
	ssrnMaxPages = 3
)

var ssrnAbstractID = regexp.MustCompile(`abstract_id=(\d+)`)

// SSRNSource scrapes the SSRN search result pages. Full texts sit behind
// authentication, so the adapter records the conventional delivery URL and
// leaves the download to fail gracefully when access is gated.
type SSRNSource struct {
	fetcher ports.Fetcher
	baseURL string
	logger  *slog.Logger
}

var _ scrape.Source = (*SSRNSource)(nil)

// NewSSRNSource wires the shared politeness client.
func NewSSRNSource(fetcher ports.Fetcher, logger *slog.Logger) *SSRNSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSRNSource{fetcher: fetcher, baseURL: ssrnBaseURL, logger: logger}
}

// Name identifies the adapter inside the registry.
func (s *SSRNSource) Name() string {
	return "ssrn"
}

// Search walks the bounded result pages. A page that cannot be parsed is
// skipped with a warning and the walk continues.
func (s *SSRNSource) Search(ctx context.Context, q scrape.Query) (scrape.SearchResult, error) {
	var result scrape.SearchResult

	for page := 1; page <= ssrnMaxPages; page++ {
		values := url.Values{}
		values.Set("npage", strconv.Itoa(page))
		values.Set("query", q.Keywords)
		pageURL := s.baseURL + "?" + values.Encode()

		body, _, err := s.fetcher.Get(ctx, s.Name(), pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, &scrape.SourceUnavailableError{Source: s.Name(), Err: err}
		}

		records, err := s.parsePage(body)
		if err != nil {
			parseErr := &scrape.ParseError{Source: s.Name(), Page: fmt.Sprintf("npage=%d", page), Err: err}
			s.logger.Warn("page skipped", "error", parseErr)
			result.Warnings = append(result.Warnings, domain.Warning{
				Source:  s.Name(),
				Query:   q.Keywords,
				Context: parseErr.Page,
				Err:     parseErr,
			})
			continue
		}
		if len(records) == 0 {
			break
		}

		result.Records = append(result.Records, records...)
		if q.MaxResults > 0 && len(result.Records) >= q.MaxResults {
			result.Records = result.Records[:q.MaxResults]
			break
		}
	}

	return result, nil
}

func (s *SSRNSource) parsePage(body []byte) ([]domain.ArticleRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var records []domain.ArticleRecord

	entries := doc.Find("div.box-abstract")
	if entries.Length() == 0 {
		entries = doc.Find(`a[href*="abstract_id="]`)
	}

	entries.Each(func(_ int, entry *goquery.Selection) {
		title := strings.TrimSpace(entry.Find("h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(entry.Text())
		}
		if len(title) < 10 {
			return
		}

		href, _ := entry.Find("a[href]").First().Attr("href")
		if href == "" {
			href, _ = entry.Attr("href")
		}
		pageURL := absoluteURL(s.baseURL, href)

		var articleID string
		if match := ssrnAbstractID.FindStringSubmatch(pageURL); match != nil {
			articleID = match[1]
		}
		if articleID == "" {
			articleID = deriveArticleID(pageURL, title)
		}
		if articleID == "" {
			return
		}

		record := domain.ArticleRecord{
			Source:    s.Name(),
			ArticleID: articleID,
			Title:     title,
			URL:       pageURL,
		}
		// Conventional delivery URL; access may still require a session.
		if match := ssrnAbstractID.FindStringSubmatch(pageURL); match != nil {
			record.PDFURL = fmt.Sprintf("https://papers.ssrn.com/sol3/Delivery.cfm/SSRN_ID%s_code.pdf", match[1])
		}

		records = append(records, record)
	})

	return records, nil
}

package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
)

const (
	arxivAPIURL   = "https://export.arxiv.org/api/query"
	arxivPageSize = 100
	arxivMaxPages = 5
	arxivDefaults = 50
)

// arXiv limits searches to these categories so core physics papers do not
// drown out the quantitative-finance material.
var arxivDefaultCategories = []string{"q-fin.*", "stat.ML", "cs.LG", "cs.AI"}

// atomFeed mirrors the Atom response of the arXiv export API.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

// ArxivSource queries the arXiv export API, the one platform here with a
// stable machine-readable interface.
type ArxivSource struct {
	fetcher ports.Fetcher
	apiURL  string
	logger  *slog.Logger
}

var _ scrape.Source = (*ArxivSource)(nil)

// NewArxivSource wires the shared politeness client.
func NewArxivSource(fetcher ports.Fetcher, logger *slog.Logger) *ArxivSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArxivSource{fetcher: fetcher, apiURL: arxivAPIURL, logger: logger}
}

// Name identifies the adapter inside the registry.
func (a *ArxivSource) Name() string {
	return "arxiv"
}

// Search pages through the Atom feed, newest submissions first, until the
// requested number of candidates is collected or the feed runs dry. A page
// that fails to decode is skipped with a warning; later pages still run.
func (a *ArxivSource) Search(ctx context.Context, q scrape.Query) (scrape.SearchResult, error) {
	var result scrape.SearchResult

	want := q.MaxResults
	if want <= 0 {
		want = arxivDefaults
	}

	for page := 0; page < arxivMaxPages && len(result.Records) < want; page++ {
		pageURL := a.buildPageURL(q, page*arxivPageSize)

		body, _, err := a.fetcher.Get(ctx, a.Name(), pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			return result, &scrape.SourceUnavailableError{Source: a.Name(), Err: err}
		}

		var feed atomFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			parseErr := &scrape.ParseError{Source: a.Name(), Page: fmt.Sprintf("start=%d", page*arxivPageSize), Err: err}
			a.logger.Warn("page skipped", "error", parseErr)
			result.Warnings = append(result.Warnings, domain.Warning{
				Source:  a.Name(),
				Query:   q.Keywords,
				Context: parseErr.Page,
				Err:     parseErr,
			})
			continue
		}

		if len(feed.Entries) == 0 {
			break
		}

		for _, entry := range feed.Entries {
			result.Records = append(result.Records, a.toRecord(entry))
			if len(result.Records) >= want {
				break
			}
		}
	}

	return result, nil
}

// buildPageURL assembles the export API query: every keyword must match
// (AND-joined all: terms) and the article must sit in a relevant category.
func (a *ArxivSource) buildPageURL(q scrape.Query, start int) string {
	terms := strings.Fields(q.Keywords)
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		parts = append(parts, "all:"+term)
	}
	search := strings.Join(parts, " AND ")
	if search == "" {
		search = "all:finance"
	}

	categories := q.Categories
	if len(categories) == 0 {
		categories = arxivDefaultCategories
	}
	catParts := make([]string, 0, len(categories))
	for _, cat := range categories {
		catParts = append(catParts, "cat:"+cat)
	}
	search = fmt.Sprintf("(%s) AND (%s)", search, strings.Join(catParts, " OR "))

	values := url.Values{}
	values.Set("search_query", search)
	values.Set("start", strconv.Itoa(start))
	values.Set("max_results", strconv.Itoa(arxivPageSize))
	values.Set("sortBy", "submittedDate")
	values.Set("sortOrder", "descending")

	return a.apiURL + "?" + values.Encode()
}

func (a *ArxivSource) toRecord(entry atomEntry) domain.ArticleRecord {
	id := entry.ID
	if idx := strings.LastIndex(id, "/"); idx >= 0 {
		id = id[idx+1:]
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, author := range entry.Authors {
		if name := strings.TrimSpace(author.Name); name != "" {
			authors = append(authors, name)
		}
	}

	var pdfURL string
	for _, link := range entry.Links {
		if link.Title == "pdf" || link.Type == "application/pdf" {
			pdfURL = link.Href
			break
		}
	}

	var published time.Time
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.Published)); err == nil {
		published = parsed
	}

	return domain.ArticleRecord{
		Source:    a.Name(),
		ArticleID: id,
		Title:     strings.Join(strings.Fields(entry.Title), " "),
		Summary:   truncate(strings.TrimSpace(entry.Summary), summaryLimit),
		Authors:   authors,
		Published: published,
		URL:       strings.TrimSpace(entry.ID),
		PDFURL:    pdfURL,
	}
}

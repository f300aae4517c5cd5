package sources

import (
	"context"
	"testing"

	"ArticlesHarvester/internal/scrape"
)

const scholarPageFixture = `<html><body>
  <div class="gs_r">
    <div class="gs_ggs"><a href="https://files.example.org/deep-rl.pdf">[PDF] example.org</a></div>
    <div class="gs_ri">
      <h3 class="gs_rt">[PDF] <a href="https://journal.example.org/articles/deep-rl-trading">Deep Reinforcement Learning for Trading</a></h3>
      <div class="gs_a">J Moody, M Saffell - Journal of Finance, 2001</div>
      <div class="gs_rs">We train agents that maximize risk-adjusted returns...</div>
    </div>
  </div>
  <div class="gs_r">
    <div class="gs_ri">
      <h3 class="gs_rt"><a href="https://journal.example.org/articles/llm-earnings">LLMs and Earnings Surprises</a></h3>
      <div class="gs_a">A Author - Working paper, 2026</div>
      <div class="gs_rs">Language models read 10-K filings.</div>
    </div>
  </div>
</body></html>`

func TestScholarSearch(t *testing.T) {
	t.Parallel()

	fetcher := &queueFetcher{responses: []queuedResponse{
		{body: []byte(scholarPageFixture)},
	}}
	src := NewScholarSource(fetcher, nil)

	result, err := src.Search(context.Background(), scrape.Query{Keywords: "AI market finance"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}

	first := result.Records[0]
	if first.Title != "Deep Reinforcement Learning for Trading" {
		t.Fatalf("[PDF] marker not stripped: %q", first.Title)
	}
	if first.ArticleID != "deep-rl-trading" {
		t.Fatalf("id not derived from url: %s", first.ArticleID)
	}
	if first.PDFURL != "https://files.example.org/deep-rl.pdf" {
		t.Fatalf("pdf link not found: %s", first.PDFURL)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "J Moody, M Saffell - Journal of Finance, 2001" {
		t.Fatalf("byline not captured: %v", first.Authors)
	}

	second := result.Records[1]
	if second.PDFURL != "" {
		t.Fatalf("entry without pdf must stay empty, got %s", second.PDFURL)
	}
	if second.ArticleID != "llm-earnings" {
		t.Fatalf("id not derived: %s", second.ArticleID)
	}

	if len(fetcher.urls) != 1 {
		t.Fatalf("scholar must never paginate, got %d requests", len(fetcher.urls))
	}
}

func TestScholarRespectsMaxResults(t *testing.T) {
	t.Parallel()

	fetcher := &queueFetcher{responses: []queuedResponse{
		{body: []byte(scholarPageFixture)},
	}}
	src := NewScholarSource(fetcher, nil)

	result, err := src.Search(context.Background(), scrape.Query{Keywords: "finance", MaxResults: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}
}

func TestCleanScholarTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"[PDF] Deep Hedging", "Deep Hedging"},
		{"[HTML][PDF] Deep Hedging", "Deep Hedging"},
		{"Deep Hedging", "Deep Hedging"},
		{"  [BOOK] Asset Pricing  ", "Asset Pricing"},
	}

	for _, tt := range tests {
		if got := cleanScholarTitle(tt.in); got != tt.want {
			t.Errorf("cleanScholarTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package sources

import (
	"context"

	"ArticlesHarvester/internal/scrape"
)

// ResearchGateSource is capability-limited: the platform serves search
// results only to authenticated browser sessions, so unauthenticated
// scraping yields nothing useful. The adapter stays registered so the source
// code remains a valid configuration value, and every query returns an empty
// result with a descriptive status instead of failing.
type ResearchGateSource struct{}

var _ scrape.Source = (*ResearchGateSource)(nil)

// NewResearchGateSource builds the placeholder adapter.
func NewResearchGateSource() *ResearchGateSource {
	return &ResearchGateSource{}
}

// Name identifies the adapter inside the registry.
func (r *ResearchGateSource) Name() string {
	return "researchgate"
}

// Search declines immediately without touching the network.
func (r *ResearchGateSource) Search(_ context.Context, _ scrape.Query) (scrape.SearchResult, error) {
	return scrape.SearchResult{
		Status: "researchgate requires an authenticated session; skipping",
	}, nil
}

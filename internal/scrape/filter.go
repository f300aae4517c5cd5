package scrape

import "strings"

// FinanceKeywords is the fixed vocabulary deciding whether an article is
// finance-related. Matching is case-insensitive substring search over
// title plus summary.
var FinanceKeywords = []string{
	"finance", "financial", "trading", "trader", "trade",
	"market", "stock", "equity", "portfolio", "investment",
	"asset", "pricing", "risk", "hedge", "hedging",
	"forex", "currency", "bond", "derivative", "option",
	"futures", "commodities", "banking", "credit", "loan",
	"volatility", "returns", "profit", "loss", "arbitrage",
	"quantitative", "algorithmic", "high-frequency", "hft",
	"wealth", "fund", "etf", "index", "dow", "nasdaq", "s&p",
	"cryptocurrency", "bitcoin", "blockchain", "defi",
	"fintech", "robo-advisor", "sentiment", "earnings",
}

// RelevanceFilter decides in/out for a candidate record. With Strict off the
// filter is a pass-through, used for sources whose query already guarantees
// topical relevance.
type RelevanceFilter struct {
	vocabulary []string
	strict     bool
}

// NewRelevanceFilter builds a filter over the given vocabulary; an empty
// vocabulary falls back to FinanceKeywords.
func NewRelevanceFilter(vocabulary []string, strict bool) *RelevanceFilter {
	if len(vocabulary) == 0 {
		vocabulary = FinanceKeywords
	}
	lowered := make([]string, len(vocabulary))
	for i, term := range vocabulary {
		lowered[i] = strings.ToLower(term)
	}
	return &RelevanceFilter{vocabulary: lowered, strict: strict}
}

// Strict reports whether zero-hit records are rejected.
func (f *RelevanceFilter) Strict() bool {
	return f.strict
}

// Relevant reports whether at least one vocabulary term occurs in
// title + " " + summary. A record with neither title nor summary is never
// relevant under strict filtering: there is no evidence to judge it by.
func (f *RelevanceFilter) Relevant(title, summary string) bool {
	if !f.strict {
		return true
	}

	text := strings.ToLower(strings.TrimSpace(title + " " + summary))
	if text == "" {
		return false
	}

	for _, term := range f.vocabulary {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

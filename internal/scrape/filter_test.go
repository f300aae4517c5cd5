package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevanceFilterStrict(t *testing.T) {
	t.Parallel()

	filter := NewRelevanceFilter(nil, true)

	tests := []struct {
		name    string
		title   string
		summary string
		want    bool
	}{
		{"finance term in title", "Deep Learning for Stock Prediction", "", true},
		{"finance term in summary", "A Survey of Transformers", "applications to volatility forecasting", true},
		{"no finance term", "Deep Learning for Cats", "", false},
		{"empty record", "", "", false},
		{"case insensitive", "PORTFOLIO Optimization via RL", "", true},
		{"term split across fields", "Graph Networks", "joint modeling of credit spreads", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, filter.Relevant(tt.title, tt.summary))
		})
	}
}

func TestRelevanceFilterPassThrough(t *testing.T) {
	t.Parallel()

	filter := NewRelevanceFilter(nil, false)

	assert.True(t, filter.Relevant("Deep Learning for Cats", ""))
	assert.True(t, filter.Relevant("", ""))
	assert.False(t, filter.Strict())
}

func TestRelevanceFilterCustomVocabulary(t *testing.T) {
	t.Parallel()

	filter := NewRelevanceFilter([]string{"Quantum"}, true)

	assert.True(t, filter.Relevant("quantum annealing for scheduling", ""))
	assert.False(t, filter.Relevant("stock prediction", ""))
}

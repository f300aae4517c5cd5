package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/scrape"
)

type fakeExtractor struct {
	abstract string
	err      error
	paths    []string
}

func (f *fakeExtractor) ExtractAbstract(path string) (string, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return "", f.err
	}
	return f.abstract, nil
}

type fakeStore struct {
	err   error
	saved []domain.ArticleRecord
}

func (f *fakeStore) SaveRun(_ context.Context, records []domain.ArticleRecord) error {
	f.saved = append(f.saved, records...)
	return f.err
}

type fakeNotifier struct {
	err       error
	published []*domain.RunResult
}

func (f *fakeNotifier) PublishSummary(_ context.Context, result *domain.RunResult, _ time.Duration) error {
	f.published = append(f.published, result)
	return f.err
}

func pipelineSource(records ...domain.ArticleRecord) *fakeSource {
	return &fakeSource{
		name:    "arxiv",
		results: []scrape.SearchResult{{Records: records}},
	}
}

func TestPipelineBackfillsShortSummaries(t *testing.T) {
	t.Parallel()

	downloaded := record("arxiv", "2401.00010", "Volatility Surfaces with Neural Networks", "")
	orch := newOrchestrator(t, &fakeDownloader{}, pipelineSource(downloaded))

	extractor := &fakeExtractor{abstract: strings.Repeat("We study volatility surfaces. ", 4)}
	pipe := NewPipeline(PipelineDeps{Orchestrator: orch, Extractor: extractor})

	result, err := pipe.Execute(context.Background(), []scrape.Query{{Keywords: "volatility"}}, []string{"arxiv"}, Options{DownloadPDFs: true})
	require.NoError(t, err)

	require.Len(t, extractor.paths, 1)
	got, ok := result.Get(domain.Key{Source: "arxiv", ArticleID: "2401.00010"})
	require.True(t, ok)
	assert.Equal(t, extractor.abstract, got.Summary)
}

func TestPipelineExtractionFailureIsWarning(t *testing.T) {
	t.Parallel()

	downloaded := record("arxiv", "2401.00011", "Hedging Errors in Incomplete Markets", "")
	orch := newOrchestrator(t, &fakeDownloader{}, pipelineSource(downloaded))

	extractor := &fakeExtractor{err: errors.New("no abstract marker found")}
	pipe := NewPipeline(PipelineDeps{Orchestrator: orch, Extractor: extractor})

	result, err := pipe.Execute(context.Background(), []scrape.Query{{Keywords: "hedging"}}, []string{"arxiv"}, Options{DownloadPDFs: true})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Context, "extract abstract")
}

func TestPipelineSkipsRecordsWithSummaries(t *testing.T) {
	t.Parallel()

	withSummary := record("arxiv", "2401.00012", "Deep Hedging Revisited", strings.Repeat("A long existing abstract. ", 4))
	orch := newOrchestrator(t, &fakeDownloader{}, pipelineSource(withSummary))

	extractor := &fakeExtractor{abstract: "should never be used"}
	pipe := NewPipeline(PipelineDeps{Orchestrator: orch, Extractor: extractor})

	_, err := pipe.Execute(context.Background(), []scrape.Query{{Keywords: "hedging"}}, []string{"arxiv"}, Options{DownloadPDFs: true})
	require.NoError(t, err)

	assert.Empty(t, extractor.paths, "records with useful summaries are not re-extracted")
}

func TestPipelinePersistsAndNotifies(t *testing.T) {
	t.Parallel()

	orch := newOrchestrator(t, nil, pipelineSource(
		record("arxiv", "2401.00013", "Bond Yield Forecasting", ""),
		record("arxiv", "2401.00014", "Stock Picking with Graph Networks", ""),
	))

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	pipe := NewPipeline(PipelineDeps{Orchestrator: orch, Store: store, Notifier: notifier})

	_, err := pipe.Execute(context.Background(), []scrape.Query{{Keywords: "forecasting"}}, []string{"arxiv"}, Options{})
	require.NoError(t, err)

	assert.Len(t, store.saved, 2)
	require.Len(t, notifier.published, 1)
	assert.Equal(t, 2, notifier.published[0].Len())
	assert.Equal(t, domain.StatusCompleted, notifier.published[0].Status)
}

type fakeLookupStore struct {
	fakeStore
	known  map[domain.Key]bool
	lookup []domain.Key
}

func (f *fakeLookupStore) KnownIDs(_ context.Context, keys []domain.Key) (map[domain.Key]bool, error) {
	f.lookup = append(f.lookup, keys...)
	return f.known, nil
}

func TestPipelineQueriesKnownIDs(t *testing.T) {
	t.Parallel()

	orch := newOrchestrator(t, nil, pipelineSource(
		record("arxiv", "2401.00016", "Option Pricing Beyond Black-Scholes", ""),
		record("arxiv", "2401.00017", "Forex Prediction with Attention", ""),
	))

	store := &fakeLookupStore{known: map[domain.Key]bool{
		{Source: "arxiv", ArticleID: "2401.00016"}: true,
	}}
	pipe := NewPipeline(PipelineDeps{Orchestrator: orch, Store: store})

	_, err := pipe.Execute(context.Background(), []scrape.Query{{Keywords: "pricing"}}, []string{"arxiv"}, Options{})
	require.NoError(t, err)

	assert.Len(t, store.lookup, 2, "every accepted key is checked against storage")
	assert.Len(t, store.saved, 2, "known records are still upserted")
}

func TestPipelineStageFailuresAreNonFatal(t *testing.T) {
	t.Parallel()

	orch := newOrchestrator(t, nil, pipelineSource(
		record("arxiv", "2401.00015", "Arbitrage Detection with Transformers", ""),
	))

	store := &fakeStore{err: errors.New("connection refused")}
	notifier := &fakeNotifier{err: errors.New("bad gateway")}
	pipe := NewPipeline(PipelineDeps{Orchestrator: orch, Store: store, Notifier: notifier})

	result, err := pipe.Execute(context.Background(), []scrape.Query{{Keywords: "arbitrage"}}, []string{"arxiv"}, Options{})
	require.NoError(t, err, "persistence and notification are best-effort")
	assert.Equal(t, 1, result.Len())
}

func TestPipelinePropagatesConfigErrors(t *testing.T) {
	t.Parallel()

	orch := newOrchestrator(t, nil, pipelineSource())
	store := &fakeStore{}
	pipe := NewPipeline(PipelineDeps{Orchestrator: orch, Store: store})

	var cfgErr *scrape.ConfigError
	_, err := pipe.Execute(context.Background(), nil, []string{"arxiv"}, Options{})
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, store.saved, "aborted runs are not persisted")
}

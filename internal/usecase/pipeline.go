package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
)

// PipelineDeps wires the driven adapters into the harvesting workflow.
type PipelineDeps struct {
	Orchestrator *Orchestrator
	Extractor    ports.AbstractExtractor
	Store        ports.RunStore
	Notifier     ports.Notifier
	Logger       *slog.Logger
}

// Pipeline runs one full harvest: scrape, backfill abstracts from downloaded
// PDFs, persist the result set, and publish a summary. Every stage past the
// scrape is best-effort; a missing collaborator is simply skipped.
type Pipeline struct {
	orchestrator *Orchestrator
	extractor    ports.AbstractExtractor
	store        ports.RunStore
	notifier     ports.Notifier
	logger       *slog.Logger
}

// NewPipeline constructs the workflow component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		orchestrator: deps.Orchestrator,
		extractor:    deps.Extractor,
		store:        deps.Store,
		notifier:     deps.Notifier,
		logger:       logger,
	}
}

// Execute performs one harvest and returns its result.
func (p *Pipeline) Execute(ctx context.Context, queries []scrape.Query, sources []string, opts Options) (*domain.RunResult, error) {
	if p.orchestrator == nil {
		return nil, fmt.Errorf("pipeline has no orchestrator")
	}

	started := time.Now()
	result, err := p.orchestrator.Run(ctx, queries, sources, opts)
	if err != nil {
		return result, err
	}

	p.backfillAbstracts(result)

	if p.store != nil {
		records := result.Records()
		p.logNewArticles(ctx, records)
		if saveErr := p.store.SaveRun(ctx, records); saveErr != nil {
			p.logger.Error("persist run", "error", saveErr)
		}
	}

	if p.notifier != nil {
		if pubErr := p.notifier.PublishSummary(ctx, result, time.Since(started)); pubErr != nil {
			p.logger.Warn("publish summary", "error", pubErr)
		}
	}

	return result, nil
}

// backfillAbstracts fills empty summaries from the first pages of downloaded
// PDFs. Extraction failures are warnings, never fatal.
func (p *Pipeline) backfillAbstracts(result *domain.RunResult) {
	if p.extractor == nil {
		return
	}

	for _, record := range result.Records() {
		if record.PDFPath == "" || len(record.Summary) >= minUsefulSummary {
			continue
		}
		abstract, err := p.extractor.ExtractAbstract(record.PDFPath)
		if err != nil {
			result.Warn(domain.Warning{
				Source:  record.Source,
				Context: "extract abstract " + record.ArticleID,
				Err:     err,
			})
			continue
		}
		result.SetSummary(record.Key(), abstract)
	}
}

// logNewArticles reports how many records of this run the store has never
// seen, when the store can answer that.
func (p *Pipeline) logNewArticles(ctx context.Context, records []domain.ArticleRecord) {
	lookup, ok := p.store.(ports.KnownIDLookup)
	if !ok || len(records) == 0 {
		return
	}

	keys := make([]domain.Key, len(records))
	for i, record := range records {
		keys[i] = record.Key()
	}
	known, err := lookup.KnownIDs(ctx, keys)
	if err != nil {
		p.logger.Warn("known id lookup", "error", err)
		return
	}

	fresh := 0
	for _, key := range keys {
		if !known[key] {
			fresh++
		}
	}
	p.logger.Info("run persistence", "articles", len(records), "new", fresh)
}

const minUsefulSummary = 50

package usecase

import (
	"context"
	"log/slog"
	"sync"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
)

// Options toggles the optional pipeline stages for one run.
type Options struct {
	DownloadPDFs bool
}

// Orchestrator drives the scraping pipeline: for each enabled source, for
// each query, invoke the adapter, filter candidates, deduplicate, optionally
// download artifacts, and accumulate the run result.
//
// Sources run concurrently, one worker per source; each worker walks the
// queries sequentially in input order. Within one source earlier queries win
// duplicate-key ties; across sources keys cannot collide because the source
// code is part of the key.
type Orchestrator struct {
	registry   *scrape.Registry
	filter     *scrape.RelevanceFilter
	downloader ports.ArtifactDownloader
	logger     *slog.Logger
}

// NewOrchestrator wires the run pipeline. The downloader may be nil when
// artifact retrieval is disabled entirely.
func NewOrchestrator(registry *scrape.Registry, filter *scrape.RelevanceFilter, downloader ports.ArtifactDownloader, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		registry:   registry,
		filter:     filter,
		downloader: downloader,
		logger:     logger,
	}
}

// Run executes one harvest across all queries and enabled sources. It always
// returns a result: partial success is the normal case. The error is non-nil
// only for configuration problems detected before any network call, or when
// the run was cancelled.
func (o *Orchestrator) Run(ctx context.Context, queries []scrape.Query, sources []string, opts Options) (*domain.RunResult, error) {
	result := domain.NewRunResult()

	if err := o.validate(queries, sources); err != nil {
		result.Status = domain.StatusAborted
		return result, err
	}

	resolved := make([]scrape.Source, 0, len(sources))
	for _, name := range sources {
		src, err := o.registry.Resolve(name)
		if err != nil {
			result.Status = domain.StatusAborted
			return result, &scrape.ConfigError{Reason: err.Error()}
		}
		resolved = append(resolved, src)
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		dedup   = scrape.NewDeduplicator()
		aborted bool
	)

	markAborted := func() {
		mu.Lock()
		aborted = true
		mu.Unlock()
	}

	for _, src := range resolved {
		wg.Add(1)
		go func(src scrape.Source) {
			defer wg.Done()
			o.harvestSource(ctx, src, queries, opts, result, dedup, &mu, markAborted)
		}(src)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if aborted || ctx.Err() != nil {
		result.Status = domain.StatusAborted
		return result, ctx.Err()
	}
	result.Status = domain.StatusCompleted
	return result, nil
}

func (o *Orchestrator) validate(queries []scrape.Query, sources []string) error {
	if len(queries) == 0 {
		return &scrape.ConfigError{Reason: "empty query set"}
	}
	if len(sources) == 0 {
		return &scrape.ConfigError{Reason: "no sources enabled"}
	}
	return nil
}

// harvestSource walks the queries for one source. Adapter and parse failures
// become warnings so the remaining work continues; only cancellation stops
// the walk.
func (o *Orchestrator) harvestSource(ctx context.Context, src scrape.Source, queries []scrape.Query, opts Options, result *domain.RunResult, dedup *scrape.Deduplicator, mu *sync.Mutex, markAborted func()) {
	log := o.logger.With("source", src.Name())

	for _, query := range queries {
		if ctx.Err() != nil {
			markAborted()
			return
		}

		searchResult, err := src.Search(ctx, query)

		mu.Lock()
		for _, warning := range searchResult.Warnings {
			result.Warn(warning)
		}
		mu.Unlock()

		if searchResult.Status != "" {
			log.Info("source declined query", "query", query.Keywords, "status", searchResult.Status)
		}

		if err != nil {
			// An adapter error is only a cancellation when the run's own
			// context says so; a per-request timeout wrapped by the adapter
			// also unwraps to a context sentinel.
			if ctx.Err() != nil {
				markAborted()
				return
			}
			log.Warn("source query failed", "query", query.Keywords, "error", err)
			mu.Lock()
			result.Warn(domain.Warning{
				Source:  src.Name(),
				Query:   query.Keywords,
				Context: "search",
				Err:     err,
			})
			mu.Unlock()
			continue
		}

		accepted := 0
		for _, candidate := range searchResult.Records {
			if !o.relevant(src, candidate) {
				log.Debug("candidate rejected", "title", candidate.Title)
				continue
			}

			// Observe records the identity and answers first-seen in one
			// step, so the lock keeps dedup-then-insert atomic.
			mu.Lock()
			first := dedup.Observe(candidate)
			mu.Unlock()
			if !first {
				continue
			}

			if opts.DownloadPDFs && candidate.PDFURL != "" && o.downloader != nil {
				updated, dErr := o.downloader.Download(ctx, candidate)
				if dErr != nil {
					log.Warn("artifact download failed", "article", candidate.ArticleID, "error", dErr)
					mu.Lock()
					result.Warn(domain.Warning{
						Source:  src.Name(),
						Query:   query.Keywords,
						Context: "download " + candidate.ArticleID,
						Err:     dErr,
					})
					mu.Unlock()
				} else {
					candidate = updated
				}
			}

			mu.Lock()
			result.Add(candidate)
			mu.Unlock()
			accepted++
		}

		log.Info("query processed",
			"query", query.Keywords,
			"candidates", len(searchResult.Records),
			"accepted", accepted)
	}
}

func (o *Orchestrator) relevant(src scrape.Source, record domain.ArticleRecord) bool {
	if always, ok := src.(scrape.AlwaysRelevant); ok && always.AlwaysRelevant() {
		return true
	}
	return o.filter.Relevant(record.Title, record.Summary)
}

package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ArticlesHarvester/internal/config"
	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/infrastructure/download"
	"ArticlesHarvester/internal/infrastructure/extract"
	"ArticlesHarvester/internal/infrastructure/scheduler"
	"ArticlesHarvester/internal/infrastructure/sources"
	"ArticlesHarvester/internal/infrastructure/storage"
	"ArticlesHarvester/internal/infrastructure/telegram"
	"ArticlesHarvester/internal/logging"
	"ArticlesHarvester/internal/netpolicy"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
	"ArticlesHarvester/internal/usecase"
)

// Application wires configuration into a runnable harvester.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
	db       *sql.DB
}

// New builds the full component graph.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	intervals := make(map[string]time.Duration, len(cfg.Rate.Intervals))
	for bucket, interval := range cfg.Rate.Intervals {
		intervals[bucket] = interval.Std()
	}
	limiter := netpolicy.NewLimiter(intervals)
	retry := netpolicy.RetryPolicy{
		MaxAttempts: cfg.Rate.Retry.MaxAttempts,
		BaseDelay:   cfg.Rate.Retry.BaseDelay.Std(),
		MaxDelay:    cfg.Rate.Retry.MaxDelay.Std(),
		Factor:      cfg.Rate.Retry.Factor,
	}
	client := netpolicy.NewClient(nil, limiter, retry)

	registry := scrape.NewRegistry()
	registry.Register(sources.NewArxivSource(client, logging.Component(baseLogger, "source.arxiv")))
	registry.Register(sources.NewSSRNSource(client, logging.Component(baseLogger, "source.ssrn")))
	registry.Register(sources.NewScholarSource(client, logging.Component(baseLogger, "source.scholar")))
	registry.Register(sources.NewJFDSSource(client, logging.Component(baseLogger, "source.jfds")))
	registry.Register(sources.NewResearchGateSource())

	filter := scrape.NewRelevanceFilter(nil, cfg.Scraper.StrictEnabled())

	var downloader ports.ArtifactDownloader
	if cfg.Scraper.DownloadEnabled() {
		downloader = download.NewDownloader(client, cfg.Scraper.PDFDir, logging.Component(baseLogger, "downloader"))
	}

	orchestrator := usecase.NewOrchestrator(registry, filter, downloader, logging.Component(baseLogger, "orchestrator"))

	var store ports.RunStore
	var db *sql.DB
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		store = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	var extractor ports.AbstractExtractor
	if cfg.Scraper.DownloadEnabled() {
		extractor = extract.NewPDFExtractor()
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Orchestrator: orchestrator,
		Extractor:    extractor,
		Store:        store,
		Notifier:     notifier,
		Logger:       logging.Component(baseLogger, "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, logger: baseLogger, db: db}, nil
}

// Run executes one harvest, or recurring harvests when a scheduler interval
// is configured. It blocks until the context is cancelled in recurring mode.
func (a *Application) Run(ctx context.Context) error {
	if a.cfg.Scheduler.Interval.Std() <= 0 {
		return a.runOnce(ctx)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval.Std())
	err := driver.Start(ctx, func(time.Time) {
		if runErr := a.runOnce(ctx); runErr != nil {
			a.logger.Error("harvest failed", "error", runErr)
		}
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return driver.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *Application) runOnce(ctx context.Context) error {
	queries := make([]scrape.Query, 0, len(a.cfg.Queries))
	for _, q := range a.cfg.Queries {
		queries = append(queries, scrape.Query{
			Keywords:   q.Keywords,
			Categories: q.Categories,
			MaxResults: a.cfg.Scraper.MaxResults,
		})
	}

	result, err := a.pipeline.Execute(ctx, queries, a.cfg.Sources, usecase.Options{
		DownloadPDFs: a.cfg.Scraper.DownloadEnabled(),
	})
	if err != nil {
		return err
	}

	a.logResult(result)
	return nil
}

func (a *Application) logResult(result *domain.RunResult) {
	a.logger.Info("harvest finished",
		"status", result.Status,
		"articles", result.Len(),
		"warnings", len(result.Warnings))
	for _, warning := range result.Warnings {
		a.logger.Warn("run warning",
			"source", warning.Source,
			"query", warning.Query,
			"context", warning.Context,
			"error", warning.Err)
	}
}

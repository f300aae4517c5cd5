package ports

import (
	"context"
	"net/http"
	"time"

	"ArticlesHarvester/internal/domain"
)

// Fetcher is the outbound HTTP path shared by adapters and the downloader.
// The bucket names the rate-limit scope ("arxiv", "ssrn/download", ...).
type Fetcher interface {
	Get(ctx context.Context, bucket, rawURL string) ([]byte, http.Header, error)
}

// ArtifactDownloader retrieves the PDF behind record.PDFURL and returns the
// record with PDFPath set, or the record unchanged alongside the error.
type ArtifactDownloader interface {
	Download(ctx context.Context, record domain.ArticleRecord) (domain.ArticleRecord, error)
}

// AbstractExtractor pulls an abstract out of a stored PDF artifact.
type AbstractExtractor interface {
	ExtractAbstract(path string) (string, error)
}

// RunStore persists the finalized records of one run.
type RunStore interface {
	SaveRun(ctx context.Context, records []domain.ArticleRecord) error
}

// KnownIDLookup is optionally implemented by stores that can tell which
// records of a run were already seen in earlier runs.
type KnownIDLookup interface {
	KnownIDs(ctx context.Context, keys []domain.Key) (map[domain.Key]bool, error)
}

// Notifier renders and publishes a run summary to an outbound channel.
type Notifier interface {
	PublishSummary(ctx context.Context, result *domain.RunResult, elapsed time.Duration) error
}

// Scheduler controls when recurring harvests execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

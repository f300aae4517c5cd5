// Package download stores PDF artifacts for accepted records, one
// subdirectory per source code under a caller-supplied root.
package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/ports"
	"ArticlesHarvester/internal/scrape"
)

// Downloader fetches record.PDFURL through the shared politeness client and
// writes the artifact under root/<source>/<sanitized-id>.pdf.
type Downloader struct {
	fetcher ports.Fetcher
	root    string
	logger  *slog.Logger
}

var _ ports.ArtifactDownloader = (*Downloader)(nil)

// NewDownloader wires the artifact store at root.
func NewDownloader(fetcher ports.Fetcher, root string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{fetcher: fetcher, root: root, logger: logger}
}

// Download retrieves the PDF and returns the record with PDFPath set. A file
// already present at the target path is trusted as a prior success: no fetch
// happens and no content hash is verified. On failure the record comes back
// unchanged alongside a DownloadError.
func (d *Downloader) Download(ctx context.Context, record domain.ArticleRecord) (domain.ArticleRecord, error) {
	if record.PDFURL == "" {
		return record, nil
	}

	target, err := d.targetPath(record)
	if err != nil {
		return record, &scrape.DownloadError{Source: record.Source, ArticleID: record.ArticleID, Err: err}
	}

	if _, statErr := os.Stat(target); statErr == nil {
		d.logger.Debug("artifact present, skipping fetch", "path", target)
		record.PDFPath = target
		return record, nil
	}

	bucket := record.Source + "/download"
	body, header, err := d.fetcher.Get(ctx, bucket, record.PDFURL)
	if err != nil {
		return record, &scrape.DownloadError{Source: record.Source, ArticleID: record.ArticleID, Err: err}
	}

	contentType := strings.ToLower(header.Get("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "pdf") && !strings.Contains(contentType, "application") {
		err := fmt.Errorf("unexpected content type %s", contentType)
		return record, &scrape.DownloadError{Source: record.Source, ArticleID: record.ArticleID, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return record, &scrape.DownloadError{Source: record.Source, ArticleID: record.ArticleID, Err: err}
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return record, &scrape.DownloadError{Source: record.Source, ArticleID: record.ArticleID, Err: err}
	}

	d.logger.Info("artifact stored", "source", record.Source, "article", record.ArticleID, "bytes", len(body))
	record.PDFPath = target
	return record, nil
}

func (d *Downloader) targetPath(record domain.ArticleRecord) (string, error) {
	name := SanitizeFilename(record.ArticleID)
	if name == "" {
		name = SanitizeFilename(record.Title)
	}
	if name == "" {
		return "", fmt.Errorf("record has no usable filename")
	}
	return filepath.Join(d.root, record.Source, name+".pdf"), nil
}

// SanitizeFilename replaces path-unsafe runes with underscores and caps the
// length so every platform's identifiers yield valid filenames.
func SanitizeFilename(raw string) string {
	const maxLen = 100

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "._")
	if len(name) > maxLen {
		name = name[:maxLen]
	}
	return name
}

package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"ArticlesHarvester/internal/domain"
	"ArticlesHarvester/internal/netpolicy"
)

func newTestDownloader(t *testing.T, httpClient *http.Client) (*Downloader, string) {
	t.Helper()
	root := t.TempDir()
	limiter := netpolicy.NewLimiter(map[string]time.Duration{"arxiv/download": time.Millisecond})
	client := netpolicy.NewClient(httpClient, limiter, netpolicy.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond})
	return NewDownloader(client, root, nil), root
}

func TestDownloadStoresArtifact(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	downloader, root := newTestDownloader(t, server.Client())
	record := domain.ArticleRecord{Source: "arxiv", ArticleID: "2501.00001", PDFURL: server.URL + "/pdf"}

	updated, err := downloader.Download(context.Background(), record)
	if err != nil {
		t.Fatalf("download: %v", err)
	}

	want := filepath.Join(root, "arxiv", "2501.00001.pdf")
	if updated.PDFPath != want {
		t.Fatalf("unexpected pdf path: %s", updated.PDFPath)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestDownloadIsIdempotent(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	downloader, _ := newTestDownloader(t, server.Client())
	record := domain.ArticleRecord{Source: "arxiv", ArticleID: "2501.00002", PDFURL: server.URL + "/pdf"}

	first, err := downloader.Download(context.Background(), record)
	if err != nil {
		t.Fatalf("first download: %v", err)
	}

	second, err := downloader.Download(context.Background(), record)
	if err != nil {
		t.Fatalf("second download: %v", err)
	}

	if hits.Load() != 1 {
		t.Fatalf("expected exactly one fetch, got %d", hits.Load())
	}
	if first.PDFPath != second.PDFPath {
		t.Fatalf("paths differ: %s vs %s", first.PDFPath, second.PDFPath)
	}
}

func TestDownloadRejectsNonPDFContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>login required</html>"))
	}))
	defer server.Close()

	downloader, root := newTestDownloader(t, server.Client())
	record := domain.ArticleRecord{Source: "arxiv", ArticleID: "2501.00003", PDFURL: server.URL + "/pdf"}

	updated, err := downloader.Download(context.Background(), record)
	if err == nil {
		t.Fatal("expected content-type error")
	}
	if updated.PDFPath != "" {
		t.Fatalf("record must come back unchanged, got path %s", updated.PDFPath)
	}
	if _, statErr := os.Stat(filepath.Join(root, "arxiv", "2501.00003.pdf")); !os.IsNotExist(statErr) {
		t.Fatal("no file must be written for rejected content")
	}
}

func TestDownloadSkipsRecordsWithoutURL(t *testing.T) {
	t.Parallel()

	downloader, _ := newTestDownloader(t, nil)
	record := domain.ArticleRecord{Source: "arxiv", ArticleID: "2501.00004"}

	updated, err := downloader.Download(context.Background(), record)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if updated.PDFPath != "" {
		t.Fatal("no artifact expected")
	}
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2501.00001v2", "2501.00001v2"},
		{"abs/1234.5678", "abs_1234.5678"},
		{"a b:c*d?e", "a_b_c_d_e"},
		{"..hidden..", "hidden"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

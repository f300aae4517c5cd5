package domain

import (
	"sort"
	"time"
)

// ArticleRecord is the normalized representation of one article across all
// platforms. Fields a source cannot provide stay zero, never fabricated.
type ArticleRecord struct {
	Source    string
	ArticleID string
	Title     string
	Summary   string
	Authors   []string
	Published time.Time
	URL       string
	PDFURL    string
	PDFPath   string
}

// Key is the natural identity of a record within one run.
type Key struct {
	Source    string
	ArticleID string
}

// Key returns the (source, article_id) identity of the record.
func (a ArticleRecord) Key() Key {
	return Key{Source: a.Source, ArticleID: a.ArticleID}
}

// RunStatus enumerates terminal states of one harvesting run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusAborted   RunStatus = "aborted"
)

// Warning records one skipped page, candidate, or download with its cause.
type Warning struct {
	Source  string
	Query   string
	Context string
	Err     error
}

// RunResult accumulates accepted records across all (query, source) pairs of
// one run. It is owned by the orchestrator while running and read-only once
// the run reaches a terminal status.
type RunResult struct {
	Status   RunStatus
	Warnings []Warning

	records map[Key]ArticleRecord
}

// NewRunResult creates an empty result in the running state.
func NewRunResult() *RunResult {
	return &RunResult{
		Status:  StatusRunning,
		records: map[Key]ArticleRecord{},
	}
}

// Add inserts a record under its key. The first observation wins: a second
// record with the same key is ignored.
func (r *RunResult) Add(record ArticleRecord) bool {
	if r.records == nil {
		r.records = map[Key]ArticleRecord{}
	}
	key := record.Key()
	if _, ok := r.records[key]; ok {
		return false
	}
	r.records[key] = record
	return true
}

// SetPDFPath records a completed artifact download. The path transitions from
// unset to set at most once.
func (r *RunResult) SetPDFPath(key Key, path string) {
	record, ok := r.records[key]
	if !ok || record.PDFPath != "" {
		return
	}
	record.PDFPath = path
	r.records[key] = record
}

// SetSummary backfills a summary extracted after the run (e.g., from a
// downloaded PDF) without touching any other field.
func (r *RunResult) SetSummary(key Key, summary string) {
	record, ok := r.records[key]
	if !ok || summary == "" {
		return
	}
	record.Summary = summary
	r.records[key] = record
}

// Warn appends a non-fatal failure to the warnings list.
func (r *RunResult) Warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// Len reports how many records were accepted so far.
func (r *RunResult) Len() int {
	return len(r.records)
}

// Get looks a record up by key.
func (r *RunResult) Get(key Key) (ArticleRecord, bool) {
	record, ok := r.records[key]
	return record, ok
}

// Records returns the accumulated records sorted by (source, article_id) so
// downstream consumers see a deterministic order regardless of how concurrent
// source workers interleaved.
func (r *RunResult) Records() []ArticleRecord {
	out := make([]ArticleRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].ArticleID < out[j].ArticleID
	})
	return out
}

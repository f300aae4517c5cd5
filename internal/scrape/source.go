package scrape

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"ArticlesHarvester/internal/domain"
)

// Query carries one keyword phrase plus source-specific constraints
// (e.g., arXiv category codes).
type Query struct {
	Keywords   string
	Categories []string
	MaxResults int
}

// SearchResult is one adapter invocation's output: candidate records plus
// non-fatal page-level warnings. Status carries a descriptive note when a
// source declines to search (capability-limited platforms).
type SearchResult struct {
	Records  []domain.ArticleRecord
	Warnings []domain.Warning
	Status   string
}

// Source executes a query against one external platform. A call is finite and
// not restartable; a fresh call re-issues network requests. Unreachable
// sources return a SourceUnavailableError after retry exhaustion; malformed
// pages are skipped and reported through SearchResult.Warnings.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) (SearchResult, error)
}

// AlwaysRelevant is implemented by sources whose query already guarantees
// topical relevance; the orchestrator skips strict filtering for them.
type AlwaysRelevant interface {
	AlwaysRelevant() bool
}

// Registry keeps a mapping from source codes to their implementations.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by code or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists the registered source codes, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package scrape

import (
	"strings"
	"unicode"

	"ArticlesHarvester/internal/domain"
)

// Deduplicator tracks article identities seen during one run. It holds keys
// only, never record bodies, and is not persisted across runs.
type Deduplicator struct {
	keys   map[domain.Key]struct{}
	titles map[string]struct{}
}

// NewDeduplicator creates an empty identity set.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		keys:   map[domain.Key]struct{}{},
		titles: map[string]struct{}{},
	}
}

// Observe reports true exactly once per distinct identity within a run. The
// identity is the (source, article_id) key plus a normalized-title
// fingerprint, so the same paper surfacing under two IDs on different
// platforms is still counted once. First observation wins.
func (d *Deduplicator) Observe(record domain.ArticleRecord) bool {
	key := record.Key()
	if _, ok := d.keys[key]; ok {
		return false
	}

	fingerprint := NormalizeTitle(record.Title)
	if fingerprint != "" {
		if _, ok := d.titles[fingerprint]; ok {
			return false
		}
		d.titles[fingerprint] = struct{}{}
	}

	d.keys[key] = struct{}{}
	return true
}

// Seen reports whether the key was already observed, without recording it.
func (d *Deduplicator) Seen(key domain.Key) bool {
	_, ok := d.keys[key]
	return ok
}

// NormalizeTitle lowercases a title and strips everything except letters and
// digits, yielding a fingerprint stable across punctuation and spacing
// differences between platforms.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

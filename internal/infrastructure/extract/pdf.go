// Package extract pulls abstracts out of downloaded PDF artifacts, used to
// backfill summaries for platforms that expose only titles.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"ArticlesHarvester/internal/ports"
)

const (
	maxPages    = 3
	minAbstract = 50
	maxAbstract = 3000
)

// Abstract boundaries: "Abstract" up to the introduction or keyword block.
var abstractPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\babstract[:.\s]+(.*?)(?:\n\s*(?:1\.?\s*introduction|keywords|index terms|i\.\s+introduction))`),
	regexp.MustCompile(`(?is)\babstract[:.\s]+(.{100,2000}?)(?:\n\s*\n)`),
}

// PDFExtractor reads the first pages of an artifact and applies abstract
// heuristics tuned for academic paper layouts.
type PDFExtractor struct{}

var _ ports.AbstractExtractor = (*PDFExtractor)(nil)

// NewPDFExtractor builds the extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractAbstract returns the abstract found in the PDF at path, or an error
// when the file is unreadable or no abstract-shaped block exists.
func (e *PDFExtractor) ExtractAbstract(path string) (string, error) {
	text, err := readLeadingText(path)
	if err != nil {
		return "", err
	}

	for _, pattern := range abstractPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		abstract := strings.Join(strings.Fields(match[1]), " ")
		if len(abstract) < minAbstract {
			continue
		}
		if len(abstract) > maxAbstract {
			abstract = abstract[:maxAbstract]
		}
		return abstract, nil
	}

	return "", fmt.Errorf("no abstract found in %s", path)
}

func readLeadingText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	pages := reader.NumPage()
	if pages > maxPages {
		pages = maxPages
	}

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text in %s", path)
	}
	return b.String(), nil
}

// Package normaliser cleans extracted text before chunking.
package normaliser

import (
	"context"
	"strings"
	"unicode"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// Processor rewrites a document's content with Normalise.
// It implements the PostProcessor interface.
type Processor struct{}

// New creates a normaliser processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "normaliser"
}

// Process normalises doc.Content in place and passes chunks through.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	doc.Content = Normalise(doc.Content)
	return chunks, nil
}

// Normalise removes control and format characters, collapses runs of
// horizontal whitespace to one space, trims every line and keeps at most one
// blank line between paragraphs. Invalid UTF-8 is dropped.
//
// Normalise(Normalise(s)) == Normalise(s) for every s.
func Normalise(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToValidUTF8(raw, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(mapRune, s)

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false

	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// mapRune keeps newlines, turns other whitespace into a space and drops
// control (Cc) and format (Cf) characters. Returning -1 drops the rune.
func mapRune(r rune) rune {
	switch {
	case r == '\n':
		return r
	case unicode.IsSpace(r):
		return ' '
	case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		return -1
	default:
		return r
	}
}

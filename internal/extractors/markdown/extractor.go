// Package markdown extracts the readable text of Markdown documents.
package markdown

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles Markdown documents.
type Extractor struct {
	md goldmark.Markdown
}

// New creates a new Markdown extractor.
func New() *Extractor {
	return &Extractor{
		md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract parses the document and returns its text without markup.
// Link targets, images and raw HTML are dropped; code is kept verbatim.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	source := raw.Content
	doc := e.md.Parser().Parse(text.NewReader(source))

	w := &textWriter{source: source}
	if err := ast.Walk(doc, w.walk); err != nil {
		return "", err
	}

	return strings.TrimSpace(w.b.String()), nil
}

type textWriter struct {
	source []byte
	b      strings.Builder
}

func (w *textWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindText:
		if entering {
			t := n.(*ast.Text)
			w.b.Write(t.Segment.Value(w.source))
			switch {
			case t.HardLineBreak():
				w.b.WriteByte('\n')
			case t.SoftLineBreak():
				w.b.WriteByte(' ')
			}
		}

	case ast.KindString:
		if entering {
			w.b.Write(n.(*ast.String).Value)
		}

	case ast.KindAutoLink:
		if entering {
			w.b.Write(n.(*ast.AutoLink).Label(w.source))
		}

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if entering {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				w.b.Write(seg.Value(w.source))
			}
			w.b.WriteString("\n\n")
		}
		return ast.WalkSkipChildren, nil

	case ast.KindImage, ast.KindHTMLBlock, ast.KindRawHTML:
		return ast.WalkSkipChildren, nil

	case extast.KindTableCell:
		if !entering {
			w.b.WriteString(" | ")
		}

	case extast.KindTableHeader, extast.KindTableRow:
		if !entering {
			w.b.WriteByte('\n')
		}

	case ast.KindParagraph, ast.KindHeading, ast.KindTextBlock, extast.KindTable:
		if !entering {
			w.b.WriteString("\n\n")
		}
	}

	return ast.WalkContinue, nil
}

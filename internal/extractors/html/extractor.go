// Package html extracts the visible text of HTML documents.
package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Elements whose content is never visible text.
const hiddenSelector = "script, style, noscript, template, svg, iframe, head"

// Block elements that end a line of text.
const blockSelector = "br, p, div, li, tr, h1, h2, h3, h4, h5, h6, " +
	"section, article, header, footer, blockquote, pre, table, ul, ol, dt, dd"

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Extract returns the text of the document body. The <title>, when
// present, is kept as the first line. Entities are decoded by the parser.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find(hiddenSelector).Remove()
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	body := doc.Find("body")
	var text string
	if body.Length() > 0 {
		text = body.Text()
	} else {
		text = doc.Text()
	}
	text = strings.TrimSpace(text)

	if title != "" && !strings.HasPrefix(text, title) {
		text = title + "\n\n" + text
	}

	return text, nil
}

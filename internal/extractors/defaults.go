package extractors

import (
	"github.com/custodia-labs/upfund/internal/extractors/csv"
	"github.com/custodia-labs/upfund/internal/extractors/docx"
	"github.com/custodia-labs/upfund/internal/extractors/html"
	"github.com/custodia-labs/upfund/internal/extractors/markdown"
	"github.com/custodia-labs/upfund/internal/extractors/pdf"
	"github.com/custodia-labs/upfund/internal/extractors/plaintext"
)

// NewDefaultRegistry returns a registry with every built-in extractor.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	r.Register(csv.New())
	return r
}

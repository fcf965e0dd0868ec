// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// DefaultChunkSize is the default chunk length.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default overlap between consecutive chunks.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits document content into fixed-size chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	tokenizer Tokenizer
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters, or tokens when a
// tokenizer is set.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithTokenizer measures chunks in tokens instead of characters.
func WithTokenizer(t Tokenizer) Option {
	return func(p *Processor) {
		p.tokenizer = t
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.chunkSize, p.overlap = clamp(p.chunkSize, p.overlap)

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks with ids "{title}_{index}".
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var texts []string
	if p.tokenizer != nil {
		texts = SplitTokens(p.tokenizer, doc.Content, p.chunkSize, p.overlap)
	} else {
		texts = Split(doc.Content, p.chunkSize, p.overlap)
	}

	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:      domain.ChunkID(doc.Title, i),
			Title:   doc.Title,
			Index:   i,
			Content: text,
		}
	}

	return chunks, nil
}

package domain

import (
	"fmt"
	"time"
)

// DefaultSearchLimit is the number of hits returned when none is requested.
const DefaultSearchLimit = 4

// EmbeddingMode selects how a text is embedded. Asymmetric models embed
// indexed passages and search queries differently.
type EmbeddingMode string

const (
	// EmbeddingModeDocument embeds passages for storage in the index.
	EmbeddingModeDocument EmbeddingMode = "document"

	// EmbeddingModeQuery embeds a search query.
	EmbeddingModeQuery EmbeddingMode = "query"
)

// IsValid returns true if the mode is recognised.
func (m EmbeddingMode) IsValid() bool {
	return m == EmbeddingModeDocument || m == EmbeddingModeQuery
}

// String returns the string representation.
func (m EmbeddingMode) String() string {
	return string(m)
}

// RetrievedHit is a single search result handed to the synthesizer.
type RetrievedHit struct {
	// Title is the source document's title.
	Title string `json:"title"`

	// Chunk is the matched chunk text.
	Chunk string `json:"chunk"`

	// Score is the similarity reported by the vector index.
	Score float64 `json:"score"`
}

// Answer is the result of asking a question.
type Answer struct {
	// Question is the question that was asked.
	Question string `json:"question"`

	// Text is the synthesized answer, or the fallback message.
	Text string `json:"answer"`

	// Sources are the hits the answer was grounded on, best first.
	Sources []RetrievedHit `json:"sources"`
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// RunID identifies the run in logs.
	RunID string

	// FilesSeen is the number of files enumerated from the source.
	FilesSeen int

	// FilesSkipped counts files without a registered extractor.
	FilesSkipped int

	// FilesIndexed counts files that produced at least one chunk.
	FilesIndexed int

	// ChunksIndexed is the number of entries upserted.
	ChunksIndexed int

	// Warnings holds recoverable failures: ExtractionFailure and
	// EmbeddingFailure values.
	Warnings []error

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}

// ExtractionFailures returns the extraction warnings of the run.
func (r *IngestReport) ExtractionFailures() []*ExtractionFailure {
	var out []*ExtractionFailure
	for _, w := range r.Warnings {
		if f, ok := w.(*ExtractionFailure); ok {
			out = append(out, f)
		}
	}
	return out
}

// EmbeddingFailures returns the embedding warnings of the run.
func (r *IngestReport) EmbeddingFailures() []*EmbeddingFailure {
	var out []*EmbeddingFailure
	for _, w := range r.Warnings {
		if f, ok := w.(*EmbeddingFailure); ok {
			out = append(out, f)
		}
	}
	return out
}

// String returns a one-line summary.
func (r *IngestReport) String() string {
	return fmt.Sprintf("%d files seen, %d indexed, %d skipped, %d chunks, %d warnings",
		r.FilesSeen, r.FilesIndexed, r.FilesSkipped, r.ChunksIndexed, len(r.Warnings))
}

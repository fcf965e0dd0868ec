package driving

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// IngestionService builds the vector index from the source directory.
type IngestionService interface {
	// IndexDocuments extracts, normalises, chunks, embeds and upserts every
	// supported file. Per-file and per-chunk failures are reported in the
	// report's warnings; an error is returned only when the run could not
	// proceed at all (source unreadable, upsert rejected).
	IndexDocuments(ctx context.Context) (*domain.IngestReport, error)
}

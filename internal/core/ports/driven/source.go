package driven

import (
	"context"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// DocumentSource enumerates and reads candidate source files.
type DocumentSource interface {
	// List returns the paths of all candidate files, sorted.
	List(ctx context.Context) ([]string, error)

	// Read loads one file.
	Read(ctx context.Context, path string) (*domain.RawDocument, error)
}

// DocumentWatcher reports changes under a source directory.
type DocumentWatcher interface {
	// Watch emits one batch per burst of changes until ctx is cancelled,
	// then closes the channel.
	Watch(ctx context.Context) (<-chan []domain.FileChange, error)
}

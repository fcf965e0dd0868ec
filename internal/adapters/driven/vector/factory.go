// Package vector selects and builds the vector index named by settings.
package vector

import (
	"context"
	"fmt"

	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/chroma"
	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/sqlite"
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// CreateVectorIndex builds the index for settings.Backend. Every stored
// vector must have the given dimensions; zero lets the index adopt the
// first vector's length.
func CreateVectorIndex(ctx context.Context, settings *domain.VectorStoreSettings, dimensions int) (driven.VectorIndex, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: vector store settings are missing", domain.ErrVectorIndexUnavailable)
	}

	switch settings.Backend {
	case domain.VectorBackendChroma:
		return chroma.NewIndex(chroma.Config{
			Host:       settings.Host,
			Port:       settings.Port,
			Collection: settings.Collection,
			Dimensions: dimensions,
		}), nil

	case domain.VectorBackendMemory:
		return memory.NewIndex(dimensions), nil

	case domain.VectorBackendSQLite:
		x, err := sqlite.NewIndex(sqlite.Config{
			Path:       settings.SQLitePath,
			Collection: settings.Collection,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return x, nil

	case domain.VectorBackendPgvector:
		x, err := pgvector.NewIndex(ctx, pgvector.Config{
			DSN:        settings.PostgresDSN,
			Collection: settings.Collection,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
		}
		return x, nil

	default:
		return nil, fmt.Errorf("%w: vector backend %q", domain.ErrUnsupportedType, settings.Backend)
	}
}

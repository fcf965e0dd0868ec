package vector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/chroma"
	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/sqlite"
	"github.com/custodia-labs/upfund/internal/core/domain"
)

func TestCreateVectorIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("chroma", func(t *testing.T) {
		x, err := CreateVectorIndex(ctx, &domain.VectorStoreSettings{
			Backend: domain.VectorBackendChroma, Host: "localhost", Port: 8000, Collection: "rag_docs",
		}, 768)
		require.NoError(t, err)
		require.IsType(t, &chroma.Index{}, x)
		assert.Equal(t, "http://localhost:8000", x.(*chroma.Index).BaseURL())
	})

	t.Run("memory", func(t *testing.T) {
		x, err := CreateVectorIndex(ctx, &domain.VectorStoreSettings{Backend: domain.VectorBackendMemory}, 2)
		require.NoError(t, err)
		assert.IsType(t, &memory.Index{}, x)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.db")
		x, err := CreateVectorIndex(ctx, &domain.VectorStoreSettings{
			Backend: domain.VectorBackendSQLite, SQLitePath: path, Collection: "rag_docs",
		}, 2)
		require.NoError(t, err)
		defer x.Close()
		require.IsType(t, &sqlite.Index{}, x)
		assert.Equal(t, path, x.(*sqlite.Index).Path())
	})

	t.Run("pgvector without DSN", func(t *testing.T) {
		_, err := CreateVectorIndex(ctx, &domain.VectorStoreSettings{Backend: domain.VectorBackendPgvector}, 2)
		assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := CreateVectorIndex(ctx, &domain.VectorStoreSettings{Backend: "faiss"}, 2)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("nil settings", func(t *testing.T) {
		_, err := CreateVectorIndex(ctx, nil, 2)
		assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	})
}

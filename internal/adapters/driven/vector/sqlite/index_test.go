package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

// setupTestIndex creates an index in a temporary directory.
func setupTestIndex(t *testing.T, cfg Config) *Index {
	t.Helper()

	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "index.db")
	}
	x, err := NewIndex(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = x.Close() })
	return x
}

func testEntry(id, title string, chunk int, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		ID:        id,
		Embedding: vec,
		Text:      "chunk " + id,
		Metadata:  domain.EntryMetadata{Title: title, ChunkIndex: chunk},
	}
}

func TestNewIndex_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "index.db")
	x := setupTestIndex(t, Config{Path: path})

	assert.Equal(t, path, x.Path())
	assert.FileExists(t, path)
	assert.NoError(t, x.Ping(context.Background()))
}

func TestNewIndex_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	first, err := NewIndex(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewIndex(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestIndex_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	x := setupTestIndex(t, Config{Dimensions: 3})

	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{
		testEntry("paris.txt_0", "paris.txt", 0, 1, 0, 0),
		testEntry("paris.txt_1", "paris.txt", 1, 0.8, 0.2, 0),
		testEntry("rome.txt_0", "rome.txt", 0, 0, 1, 0),
	}))

	n, err := x.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := x.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "paris.txt_0", hits[0].Entry.ID)
	assert.Equal(t, "paris.txt", hits[0].Entry.Metadata.Title)
	assert.Equal(t, 0, hits[0].Entry.Metadata.ChunkIndex)
	assert.Equal(t, "chunk paris.txt_0", hits[0].Entry.Text)
	assert.Equal(t, []float32{1, 0, 0}, hits[0].Entry.Embedding)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "paris.txt_1", hits[1].Entry.ID)
}

func TestIndex_UpsertReplacesByID(t *testing.T) {
	ctx := context.Background()
	x := setupTestIndex(t, Config{Dimensions: 2})

	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{testEntry("a_0", "a", 0, 1, 0)}))

	updated := testEntry("a_0", "a", 0, 0, 1)
	updated.Text = "rewritten"
	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{updated}))

	n, err := x.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := x.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "rewritten", hits[0].Entry.Text)
}

func TestIndex_EmptyBehaviour(t *testing.T) {
	ctx := context.Background()
	x := setupTestIndex(t, Config{Dimensions: 2})

	require.NoError(t, x.Upsert(ctx, nil))

	hits, err := x.Query(ctx, []float32{1, 0}, 4)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestIndex_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	x := setupTestIndex(t, Config{Dimensions: 2})

	err := x.Upsert(ctx, []domain.IndexEntry{testEntry("a_0", "a", 0, 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	require.NoError(t, x.Upsert(ctx, []domain.IndexEntry{testEntry("a_0", "a", 0, 1, 0)}))
	_, err = x.Query(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_ReopenKeepsEntriesAndDimensions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	first, err := NewIndex(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Upsert(ctx, []domain.IndexEntry{testEntry("a_0", "a", 0, 1, 0)}))
	require.NoError(t, first.Close())

	second := setupTestIndex(t, Config{Path: path})

	n, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = second.Upsert(ctx, []domain.IndexEntry{testEntry("b_0", "b", 0, 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestIndex_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	docs := setupTestIndex(t, Config{Path: path, Collection: "docs"})
	notes := setupTestIndex(t, Config{Path: path, Collection: "notes"})

	require.NoError(t, docs.Upsert(ctx, []domain.IndexEntry{testEntry("a_0", "a", 0, 1, 0)}))

	n, err := notes.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIndex_ClosedReportsUnavailable(t *testing.T) {
	ctx := context.Background()
	x, err := NewIndex(Config{Path: filepath.Join(t.TempDir(), "index.db")})
	require.NoError(t, err)
	require.NoError(t, x.Close())

	_, err = x.Query(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)

	assert.ErrorIs(t, x.Ping(ctx), domain.ErrRetrievalUnavailable)
}

func TestFloat32Blob(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

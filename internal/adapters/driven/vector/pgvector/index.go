// Package pgvector provides a vector index backed by PostgreSQL with the
// pgvector extension. Ranking happens in the database with the cosine
// distance operator.
package pgvector

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/similarity"
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Config holds configuration for the pgvector index.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// Collection names the table holding entries.
	Collection string

	// Dimensions fixes the vector column size. Zero leaves it unconstrained.
	Dimensions int
}

// Index stores entries in a PostgreSQL table.
type Index struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int

	closeOnce sync.Once
}

// NewIndex connects to the database and creates the extension and table if
// they are missing.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: postgres DSN is required", domain.ErrConfigNotFound)
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &domain.RetrievalUnavailable{Op: "connect", Err: err}
	}

	x := &Index{
		pool:       pool,
		table:      tableName(cfg.Collection),
		dimensions: cfg.Dimensions,
	}

	if err := x.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return x, nil
}

// Upsert writes entries in a single batch.
func (x *Index) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := similarity.CheckDimensions(entries, x.dimensions); err != nil {
		return err
	}

	query := upsertSQL(x.table)
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, e.ID, e.Metadata.Title, e.Metadata.ChunkIndex, e.Text, pgv.NewVector(e.Embedding))
	}

	results := x.pool.SendBatch(ctx, batch)
	for _, e := range entries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return &domain.RetrievalUnavailable{Op: "upsert", Err: fmt.Errorf("saving entry %s: %w", e.ID, err)}
		}
	}
	if err := results.Close(); err != nil {
		return &domain.RetrievalUnavailable{Op: "upsert", Err: err}
	}
	return nil
}

// Query returns up to k entries ordered by cosine distance to vector.
func (x *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredEntry, error) {
	if x.dimensions != 0 && len(vector) != x.dimensions {
		return nil, &similarity.DimensionError{ID: "query", Want: x.dimensions, Got: len(vector)}
	}
	if k <= 0 {
		return []domain.ScoredEntry{}, nil
	}

	rows, err := x.pool.Query(ctx, querySQL(x.table), pgv.NewVector(vector), k)
	if err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: err}
	}
	defer rows.Close()

	out := []domain.ScoredEntry{}
	for rows.Next() {
		var s domain.ScoredEntry
		if err := rows.Scan(&s.Entry.ID, &s.Entry.Metadata.Title, &s.Entry.Metadata.ChunkIndex,
			&s.Entry.Text, &s.Score); err != nil {
			return nil, &domain.RetrievalUnavailable{Op: "query", Err: fmt.Errorf("scanning entry: %w", err)}
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: err}
	}
	return out, nil
}

// Count returns the number of rows in the table.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+x.table).Scan(&n); err != nil {
		return 0, &domain.RetrievalUnavailable{Op: "count", Err: err}
	}
	return n, nil
}

// Ping checks the database connection.
func (x *Index) Ping(ctx context.Context) error {
	if err := x.pool.Ping(ctx); err != nil {
		return &domain.RetrievalUnavailable{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the connection pool.
func (x *Index) Close() error {
	x.closeOnce.Do(x.pool.Close)
	return nil
}

func (x *Index) ensureSchema(ctx context.Context) error {
	if _, err := x.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}
	if _, err := x.pool.Exec(ctx, createTableSQL(x.table, x.dimensions)); err != nil {
		return fmt.Errorf("creating table %s: %w", x.table, err)
	}
	return nil
}

// tableName quotes a collection name for use as an SQL identifier.
func tableName(collection string) string {
	return pgx.Identifier{collection}.Sanitize()
}

func createTableSQL(table string, dimensions int) string {
	column := "vector"
	if dimensions > 0 {
		column = "vector(" + strconv.Itoa(dimensions) + ")"
	}
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL DEFAULT '',
		chunk_index INTEGER NOT NULL DEFAULT 0,
		text        TEXT NOT NULL DEFAULT '',
		embedding   ` + column + ` NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
}

func upsertSQL(table string) string {
	return `INSERT INTO ` + table + ` (id, title, chunk_index, text, embedding, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			chunk_index = EXCLUDED.chunk_index,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`
}

func querySQL(table string) string {
	return `SELECT id, title, chunk_index, text, 1 - (embedding <=> $1) AS score
		FROM ` + table + `
		ORDER BY embedding <=> $1
		LIMIT $2`
}

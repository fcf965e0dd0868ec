// Package sqlite provides a persistent vector index backed by an embedded
// SQLite database. Vectors are stored as little-endian float32 blobs and
// ranked by brute-force cosine similarity at query time.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/similarity"
	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/sqlite/migrations"
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Config holds the SQLite index configuration.
type Config struct {
	// Path is the database file. Defaults to ~/.upfund/data/index.db.
	Path string

	// Collection namespaces entries within the database.
	Collection string

	// Dimensions is the expected vector length. Zero adopts the length of
	// the first stored vector.
	Dimensions int
}

// Index is a SQLite implementation of driven.VectorIndex.
type Index struct {
	db         *sql.DB
	path       string
	collection string

	mu         sync.RWMutex
	dimensions int
}

// NewIndex opens (creating if needed) the database and applies migrations.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.Path = filepath.Join(home, ".upfund", "data", "index.db")
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	x := &Index{
		db:         db,
		path:       cfg.Path,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}

	if err := x.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if x.dimensions == 0 {
		if err := x.loadDimensions(); err != nil {
			db.Close()
			return nil, err
		}
	}

	return x, nil
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.path
}

// Upsert inserts or replaces entries by id in a single transaction.
func (x *Index) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dims, err := similarity.CheckDimensions(entries, x.dimensions)
	if err != nil {
		return err
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.RetrievalUnavailable{Op: "upsert", Err: fmt.Errorf("beginning transaction: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries (collection, id, title, chunk_index, text, dimensions, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, id) DO UPDATE SET
			title = excluded.title,
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			dimensions = excluded.dimensions,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return &domain.RetrievalUnavailable{Op: "upsert", Err: fmt.Errorf("preparing statement: %w", err)}
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, x.collection, e.ID, e.Metadata.Title, e.Metadata.ChunkIndex,
			e.Text, len(e.Embedding), float32SliceToBytes(e.Embedding)); err != nil {
			return &domain.RetrievalUnavailable{Op: "upsert", Err: fmt.Errorf("saving entry %s: %w", e.ID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.RetrievalUnavailable{Op: "upsert", Err: fmt.Errorf("committing transaction: %w", err)}
	}
	x.dimensions = dims
	return nil
}

// Query loads the collection and returns the k entries nearest to vector.
func (x *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredEntry, error) {
	rows, err := x.db.QueryContext(ctx, `
		SELECT id, title, chunk_index, text, embedding
		FROM index_entries WHERE collection = ?
	`, x.collection)
	if err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: err}
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		var e domain.IndexEntry
		var blob []byte
		if err := rows.Scan(&e.ID, &e.Metadata.Title, &e.Metadata.ChunkIndex, &e.Text, &blob); err != nil {
			return nil, &domain.RetrievalUnavailable{Op: "query", Err: fmt.Errorf("scanning entry: %w", err)}
		}
		e.Embedding = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: err}
	}

	if len(entries) == 0 {
		return []domain.ScoredEntry{}, nil
	}
	x.mu.RLock()
	dims := x.dimensions
	x.mu.RUnlock()
	if dims != 0 && len(vector) != dims {
		return nil, &similarity.DimensionError{ID: "query", Want: dims, Got: len(vector)}
	}

	return similarity.TopK(entries, vector, k), nil
}

// Count returns the number of entries in the collection.
func (x *Index) Count(ctx context.Context) (int, error) {
	var n int
	row := x.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_entries WHERE collection = ?", x.collection)
	if err := row.Scan(&n); err != nil {
		return 0, &domain.RetrievalUnavailable{Op: "count", Err: err}
	}
	return n, nil
}

// Ping checks the database connection.
func (x *Index) Ping(ctx context.Context) error {
	if err := x.db.PingContext(ctx); err != nil {
		return &domain.RetrievalUnavailable{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// loadDimensions adopts the vector length already stored in the collection.
func (x *Index) loadDimensions() error {
	var dims sql.NullInt64
	row := x.db.QueryRow("SELECT MAX(dimensions) FROM index_entries WHERE collection = ?", x.collection)
	if err := row.Scan(&dims); err != nil {
		return fmt.Errorf("reading stored dimensions: %w", err)
	}
	if dims.Valid {
		x.dimensions = int(dims.Int64)
	}
	return nil
}

// migrate runs all pending migrations.
func (x *Index) migrate(fsys embed.FS) error {
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	row := x.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var ups []string
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".up.sql") {
			ups = append(ups, f.Name())
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		// "001_index_entries.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := x.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes encodes a vector as a little-endian blob.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a blob written by float32SliceToBytes.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// Package chroma provides a vector index adapter for a remote Chroma server,
// speaking its v2 REST API over HTTP.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/upfund/internal/adapters/driven/vector/similarity"
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultTenant   = "default_tenant"
	DefaultDatabase = "default_database"
)

// Config holds configuration for the Chroma index.
type Config struct {
	// BaseURL overrides Host and Port, e.g. "http://localhost:8000".
	BaseURL string

	// Host and Port address the server (default: chromadb:8000).
	Host string
	Port int

	// Collection is created on first use if missing.
	Collection string

	// Dimensions is the expected vector length. Zero disables the check.
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Index stores entries in a Chroma collection.
type Index struct {
	client     *http.Client
	baseURL    string
	collection string
	dimensions int

	mu           sync.Mutex
	collectionID string
}

// NewIndex creates a Chroma index. No request is made until first use.
func NewIndex(cfg Config) *Index {
	if cfg.Host == "" {
		cfg.Host = domain.DefaultChromaHost
	}
	if cfg.Port == 0 {
		cfg.Port = domain.DefaultChromaPort
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://" + cfg.Host + ":" + strconv.Itoa(cfg.Port)
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}
}

// BaseURL returns the server address.
func (x *Index) BaseURL() string {
	return x.baseURL
}

type createCollectionRequest struct {
	Name        string         `json:"name"`
	GetOrCreate bool           `json:"get_or_create"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type upsertRequest struct {
	IDs        []string               `json:"ids"`
	Embeddings [][]float32            `json:"embeddings"`
	Metadatas  []domain.EntryMetadata `json:"metadatas"`
	Documents  []string               `json:"documents"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// queryResponse holds one result list per query embedding.
type queryResponse struct {
	IDs       [][]string                `json:"ids"`
	Documents [][]*string               `json:"documents"`
	Metadatas [][]*domain.EntryMetadata `json:"metadatas"`
	Distances [][]float64               `json:"distances"`
}

// Upsert writes entries to the collection in one request.
func (x *Index) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := similarity.CheckDimensions(entries, x.dimensions); err != nil {
		return err
	}

	id, err := x.ensureCollection(ctx)
	if err != nil {
		return &domain.RetrievalUnavailable{Op: "upsert", Err: err}
	}

	req := upsertRequest{
		IDs:        make([]string, len(entries)),
		Embeddings: make([][]float32, len(entries)),
		Metadatas:  make([]domain.EntryMetadata, len(entries)),
		Documents:  make([]string, len(entries)),
	}
	for i, e := range entries {
		req.IDs[i] = e.ID
		req.Embeddings[i] = e.Embedding
		req.Metadatas[i] = e.Metadata
		req.Documents[i] = e.Text
	}

	if err := x.do(ctx, http.MethodPost, x.collectionPath(id)+"/upsert", req, nil); err != nil {
		return &domain.RetrievalUnavailable{Op: "upsert", Err: err}
	}
	return nil
}

// Query returns up to k entries nearest to vector. Chroma reports cosine
// distance; the score is 1 - distance.
func (x *Index) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredEntry, error) {
	if x.dimensions != 0 && len(vector) != x.dimensions {
		return nil, &similarity.DimensionError{ID: "query", Want: x.dimensions, Got: len(vector)}
	}
	if k <= 0 {
		return []domain.ScoredEntry{}, nil
	}

	n, err := x.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []domain.ScoredEntry{}, nil
	}
	if k > n {
		k = n
	}

	id, err := x.ensureCollection(ctx)
	if err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: err}
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        k,
		Include:         []string{"documents", "metadatas", "distances"},
	}
	var resp queryResponse
	if err := x.do(ctx, http.MethodPost, x.collectionPath(id)+"/query", req, &resp); err != nil {
		return nil, &domain.RetrievalUnavailable{Op: "query", Err: err}
	}

	if len(resp.IDs) == 0 {
		return []domain.ScoredEntry{}, nil
	}

	ids := resp.IDs[0]
	out := make([]domain.ScoredEntry, 0, len(ids))
	for i, entryID := range ids {
		e := domain.IndexEntry{ID: entryID}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) && resp.Documents[0][i] != nil {
			e.Text = *resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) && resp.Metadatas[0][i] != nil {
			e.Metadata = *resp.Metadatas[0][i]
		}
		score := 0.0
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			score = 1 - resp.Distances[0][i]
		}
		out = append(out, domain.ScoredEntry{Entry: e, Score: score})
	}
	return out, nil
}

// Count returns the number of entries in the collection.
func (x *Index) Count(ctx context.Context) (int, error) {
	id, err := x.ensureCollection(ctx)
	if err != nil {
		return 0, &domain.RetrievalUnavailable{Op: "count", Err: err}
	}

	var n int
	if err := x.do(ctx, http.MethodGet, x.collectionPath(id)+"/count", nil, &n); err != nil {
		return 0, &domain.RetrievalUnavailable{Op: "count", Err: err}
	}
	return n, nil
}

// Ping checks the server heartbeat.
func (x *Index) Ping(ctx context.Context) error {
	if err := x.do(ctx, http.MethodGet, "/api/v2/heartbeat", nil, nil); err != nil {
		return &domain.RetrievalUnavailable{Op: "ping", Err: err}
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	x.client.CloseIdleConnections()
	return nil
}

// ensureCollection gets or creates the collection and caches its id.
func (x *Index) ensureCollection(ctx context.Context) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.collectionID != "" {
		return x.collectionID, nil
	}

	req := createCollectionRequest{
		Name:        x.collection,
		GetOrCreate: true,
		Metadata:    map[string]any{"hnsw:space": "cosine"},
	}
	var resp collectionResponse
	if err := x.do(ctx, http.MethodPost, x.collectionsPath(), req, &resp); err != nil {
		return "", fmt.Errorf("get or create collection %q: %w", x.collection, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("get or create collection %q: empty id in response", x.collection)
	}

	x.collectionID = resp.ID
	return x.collectionID, nil
}

func (x *Index) collectionsPath() string {
	return "/api/v2/tenants/" + DefaultTenant + "/databases/" + DefaultDatabase + "/collections"
}

func (x *Index) collectionPath(id string) string {
	return x.collectionsPath() + "/" + url.PathEscape(id)
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (x *Index) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("chroma error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("chroma error (status %d): %s", resp.StatusCode, string(msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

var errTransient = &domain.ProviderError{Provider: "fake", StatusCode: 503, Err: errors.New("fake: service unavailable")}

// fakeEmbedding returns a fixed vector per text, or a vector derived from
// the text length.
type fakeEmbedding struct {
	mu sync.Mutex

	dims      int
	vectors   map[string][]float32
	failTexts map[string]error
	batchErr  error
	embedErr  error
	failFirst int
	delay     time.Duration
	pingErr   error

	calls      int
	batchCalls int
	modes      []domain.EmbeddingMode
	closed     bool
}

func newFakeEmbedding(dims int) *fakeEmbedding {
	return &fakeEmbedding{
		dims:      dims,
		vectors:   make(map[string][]float32),
		failTexts: make(map[string]error),
	}
}

func (f *fakeEmbedding) vectorFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return append([]float32(nil), v...)
	}
	v := make([]float32, f.dims)
	v[0] = 1
	if f.dims > 1 {
		v[1] = float32(len(text) % 13)
	}
	return v
}

func (f *fakeEmbedding) Embed(ctx context.Context, text string, mode domain.EmbeddingMode) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.modes = append(f.modes, mode)
	if f.failFirst > 0 {
		f.failFirst--
		f.mu.Unlock()
		return nil, errTransient
	}
	err := f.failTexts[text]
	if f.embedErr != nil {
		err = f.embedErr
	}
	delay := f.delay
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vectorFor(text), nil
}

func (f *fakeEmbedding) EmbedBatch(_ context.Context, texts []string, mode domain.EmbeddingMode) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	f.modes = append(f.modes, mode)

	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := f.failTexts[text]; err != nil {
			return nil, err
		}
		out[i] = f.vectorFor(text)
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int { return f.dims }

func (f *fakeEmbedding) ModelName() string { return "fake-embed" }

func (f *fakeEmbedding) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeEmbedding) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	pingErr  error
	prompts  []string
	opts     []driven.GenerateOptions
	deadline bool
	closed   bool
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	_, f.deadline = ctx.Deadline()
	return f.response, f.err
}

func (f *fakeLLM) ModelName() string { return "fake-llm" }

func (f *fakeLLM) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeLLM) Close() error {
	f.closed = true
	return nil
}

// fakeIndex records upserts and returns canned query results.
type fakeIndex struct {
	upsertErr error
	queryErr  error
	pingErr   error
	results   []domain.ScoredEntry
	upserts   [][]domain.IndexEntry
	lastK     int
	closed    bool
}

func (f *fakeIndex) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	f.upserts = append(f.upserts, entries)
	return f.upsertErr
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, k int) ([]domain.ScoredEntry, error) {
	f.lastK = k
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if k < len(f.results) {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeIndex) Count(_ context.Context) (int, error) {
	n := 0
	for _, batch := range f.upserts {
		n += len(batch)
	}
	return n, nil
}

func (f *fakeIndex) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeIndex) Close() error {
	f.closed = true
	return nil
}

// fakeSource serves files from a map keyed by path.
type fakeSource struct {
	files   map[string]string
	listErr error
	readErr map[string]error
}

func (f *fakeSource) List(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *fakeSource) Read(_ context.Context, path string) (*domain.RawDocument, error) {
	if err := f.readErr[path]; err != nil {
		return nil, err
	}
	return &domain.RawDocument{
		Path:    path,
		Title:   filepath.Base(path),
		Content: []byte(f.files[path]),
	}, nil
}

// failingExtractor claims an extension and always fails.
type failingExtractor struct {
	ext string
}

func (f failingExtractor) Extensions() []string { return []string{f.ext} }

func (f failingExtractor) Extract(_ context.Context, _ *domain.RawDocument) (string, error) {
	return "", errors.New("corrupt file")
}

type fakePrompts struct {
	tmpl string
	err  error
}

func (f fakePrompts) Load(_ string) (string, error) { return f.tmpl, f.err }

func (f fakePrompts) Reload() {}

// fakeSearcher returns canned hits.
type fakeSearcher struct {
	hits  []domain.RetrievedHit
	query string
	k     int
}

func (f *fakeSearcher) Search(_ context.Context, query string, k int) []domain.RetrievedHit {
	f.query = query
	f.k = k
	return f.hits
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Ensure Engine implements the interface.
var _ driving.Engine = (*Engine)(nil)

// EngineConfig lists the handles an Engine is built from. The engine owns
// Embedding, LLM and Index and closes them in Close.
type EngineConfig struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Index     driven.VectorIndex

	// IndexName labels the index in health output, e.g. "chroma".
	IndexName string

	// Source, Extractors and Pipeline are needed only by IndexDocuments.
	Source     driven.DocumentSource
	Extractors driven.ExtractorRegistry
	Pipeline   driven.PostProcessorPipeline

	// Watcher reports source changes for Watch. Nil disables watching.
	Watcher driven.DocumentWatcher

	// Prompts supplies the answer template. Nil uses the built-in one.
	Prompts driven.PromptStore

	Embedder    EmbedderConfig
	Synthesizer SynthesizerConfig

	// DefaultK is the number of hits used when a caller passes k <= 0.
	DefaultK int
}

// Engine is the retrieval-augmented generation engine: one explicitly
// constructed value holding the provider clients and the index.
type Engine struct {
	embedding driven.EmbeddingService
	llm       driven.LLMService
	index     driven.VectorIndex
	indexName string
	watcher   driven.DocumentWatcher

	embedder    *Embedder
	ingestion   *IngestionService
	retriever   *Retriever
	synthesizer *Synthesizer
}

// NewEngine wires the ingestion and query pipelines. Embedding and Index are
// required; a nil LLM makes every answer the fallback message.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Embedding == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if cfg.Index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	indexName := cfg.IndexName
	if indexName == "" {
		indexName = fmt.Sprintf("%T", cfg.Index)
	}

	embedder := NewEmbedder(cfg.Embedding, cfg.Embedder)
	retriever := NewRetriever(embedder, cfg.Index, cfg.DefaultK)

	return &Engine{
		embedding:   cfg.Embedding,
		llm:         cfg.LLM,
		index:       cfg.Index,
		indexName:   indexName,
		watcher:     cfg.Watcher,
		embedder:    embedder,
		ingestion:   NewIngestionService(cfg.Source, cfg.Extractors, cfg.Pipeline, embedder, cfg.Index),
		retriever:   retriever,
		synthesizer: NewSynthesizer(cfg.LLM, cfg.Prompts, retriever, cfg.Synthesizer),
	}, nil
}

// IndexDocuments ingests every supported file from the source.
func (e *Engine) IndexDocuments(ctx context.Context) (*domain.IngestReport, error) {
	return e.ingestion.IndexDocuments(ctx)
}

// Search returns up to k hits for query; failures yield no hits.
func (e *Engine) Search(ctx context.Context, query string, k int) []domain.RetrievedHit {
	return e.retriever.Search(ctx, query, k)
}

// Retrieve is Search with the failure reported.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedHit, error) {
	return e.retriever.Retrieve(ctx, query, k)
}

// Synthesize answers query from hits; failures yield FallbackAnswer.
func (e *Engine) Synthesize(ctx context.Context, query string, hits []domain.RetrievedHit) string {
	return e.synthesizer.Synthesize(ctx, query, hits)
}

// Ask runs Search then Synthesize.
func (e *Engine) Ask(ctx context.Context, question string, k int) domain.Answer {
	return e.synthesizer.Ask(ctx, question, k)
}

// Count returns the number of indexed entries.
func (e *Engine) Count(ctx context.Context) (int, error) {
	return e.index.Count(ctx)
}

// Dimensions returns the embedding vector length.
func (e *Engine) Dimensions() int {
	return e.embedder.Dimensions()
}

// Health checks the embedding provider, the LLM provider and the index.
func (e *Engine) Health(ctx context.Context) []domain.ComponentHealth {
	checks := []domain.ComponentHealth{
		{Name: "embedding", Detail: e.embedding.ModelName(), Err: e.embedding.Ping(ctx)},
	}

	if e.llm == nil {
		checks = append(checks, domain.ComponentHealth{Name: "llm", Detail: "not configured", Err: domain.ErrLLMUnavailable})
	} else {
		checks = append(checks, domain.ComponentHealth{Name: "llm", Detail: e.llm.ModelName(), Err: e.llm.Ping(ctx)})
	}

	checks = append(checks, domain.ComponentHealth{Name: "vector store", Detail: e.indexName, Err: e.index.Ping(ctx)})
	return checks
}

// Watch re-indexes the whole source once per batch of changes. Batches
// already queued when a run starts are folded into that run.
func (e *Engine) Watch(ctx context.Context, onRun func(*domain.IngestReport, error)) error {
	if e.watcher == nil {
		return fmt.Errorf("%w: no document watcher configured", domain.ErrInvalidInput)
	}

	changes, err := e.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch documents: %w", err)
	}

	for batch := range changes {
		for _, change := range batch {
			logger.Debug("Change %s: %s", change.Type, change.Path)
		}
		drain(changes)

		report, err := e.ingestion.IndexDocuments(ctx)
		if onRun != nil {
			onRun(report, err)
		}
	}
	return nil
}

// drain discards batches that are already waiting.
func drain(changes <-chan []domain.FileChange) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Ping returns the joined errors of every unhealthy component.
func (e *Engine) Ping(ctx context.Context) error {
	var errs []error
	for _, c := range e.Health(ctx) {
		if c.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, c.Err))
		}
	}
	return errors.Join(errs...)
}

// Close releases the provider clients and the index.
func (e *Engine) Close() error {
	var errs []error
	if err := e.embedding.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close embedding: %w", err))
	}
	if e.llm != nil {
		if err := e.llm.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close llm: %w", err))
		}
	}
	if err := e.index.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close index: %w", err))
	}
	return errors.Join(errs...)
}

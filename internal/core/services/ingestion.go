package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService builds the vector index from a document source.
type IngestionService struct {
	source     driven.DocumentSource
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	embedder   *Embedder
	index      driven.VectorIndex
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	source driven.DocumentSource,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder *Embedder,
	index driven.VectorIndex,
) *IngestionService {
	return &IngestionService{
		source:     source,
		extractors: extractors,
		pipeline:   pipeline,
		embedder:   embedder,
		index:      index,
	}
}

// IndexDocuments runs one full ingestion pass. Files without an extractor
// are skipped silently. Files that fail to read, extract or chunk are
// skipped with an ExtractionFailure warning. Texts that fail to embed are
// stored with a zero vector and an EmbeddingFailure warning. All entries
// are written in a single upsert, skipped when there are none.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *IngestionService) IndexDocuments(ctx context.Context) (*domain.IngestReport, error) {
	if s.source == nil || s.extractors == nil || s.pipeline == nil {
		return nil, fmt.Errorf("%w: ingestion is not configured", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	report := &domain.IngestReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	logger.Section("Ingestion " + report.RunID)

	// 1. Enumerate candidate files
	paths, err := s.source.List(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Document directory does not exist, nothing to index: %v", err)
			return report, nil
		}
		return nil, fmt.Errorf("list documents: %w", err)
	}
	report.FilesSeen = len(paths)
	logger.Info("[1/5] Found %d files", len(paths))

	// 2-3. Extract, normalise and chunk each supported file independently
	var chunks []domain.Chunk
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.extractors.Supports(path) {
			report.FilesSkipped++
			logger.Debug("Skipping %s: no extractor for %q", path, domain.ExtensionOf(path))
			continue
		}

		docChunks, err := s.processFile(ctx, path)
		if err != nil {
			failure := &domain.ExtractionFailure{Path: path, Err: err}
			report.Warnings = append(report.Warnings, failure)
			logger.Warn("Skipping file: %v", failure)
			continue
		}
		if len(docChunks) == 0 {
			logger.Debug("%s produced no text", path)
			continue
		}

		report.FilesIndexed++
		chunks = append(chunks, docChunks...)
		logger.Debug("%s: %d chunks", path, len(docChunks))
	}
	logger.Info("[2/5] Extracted %d files", report.FilesIndexed)
	logger.Info("[3/5] Produced %d chunks", len(chunks))

	if len(chunks) == 0 {
		logger.Info("Nothing to index")
		return report, nil
	}

	// 4. Embed every chunk in document mode
	start := time.Now()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, failures := s.embedder.EmbedTexts(ctx, texts, domain.EmbeddingModeDocument)
	for i, f := range failures {
		if f == nil {
			continue
		}
		var ef *domain.EmbeddingFailure
		if errors.As(f, &ef) {
			ef.ID = chunks[i].ID
		}
		report.Warnings = append(report.Warnings, f)
		logger.Warn("Using zero vector: %v", f)
	}
	logger.Info("[4/5] Embedded %d chunks", len(chunks))
	logger.Elapsed("Embedding", start)

	// 5. Single upsert of all entries
	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = domain.NewIndexEntry(c, vectors[i])
	}
	if err := s.index.Upsert(ctx, entries); err != nil {
		return nil, fmt.Errorf("upsert entries: %w", err)
	}
	report.ChunksIndexed = len(entries)
	logger.Info("[5/5] Upserted %d entries", len(entries))

	return report, nil
}

// processFile reads, extracts and chunks one file.
func (s *IngestionService) processFile(ctx context.Context, path string) ([]domain.Chunk, error) {
	raw, err := s.source.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	text, err := s.extractors.Extract(ctx, raw)
	if err != nil {
		return nil, err
	}

	doc := &domain.Document{
		Title:   raw.Title,
		Path:    raw.Path,
		Format:  raw.Extension(),
		Content: text,
	}

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	return chunks, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/upfund/internal/adapters/driven/ai"
	"github.com/custodia-labs/upfund/internal/adapters/driven/config/file"
	"github.com/custodia-labs/upfund/internal/adapters/driven/config/memory"
	"github.com/custodia-labs/upfund/internal/adapters/driven/vector"
	"github.com/custodia-labs/upfund/internal/adapters/driving/cli"
	"github.com/custodia-labs/upfund/internal/connectors/filesystem"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/core/services"
	"github.com/custodia-labs/upfund/internal/extractors"
	"github.com/custodia-labs/upfund/internal/logger"
	"github.com/custodia-labs/upfund/internal/postprocessors"
)

// buildServices opens the config store and prompt store and returns the
// settings service plus a factory that builds engines from current settings.
func buildServices(configPath string) (*cli.Services, error) {
	store, promptDir, err := openConfigStore(configPath)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompt store: %w", err)
	}

	settings := services.NewSettingsService(store, ai.NewConfigValidator())

	return &cli.Services{
		Settings:   settings,
		OpenEngine: engineFactory(settings, prompts),
		Prompts:    prompts,
	}, nil
}

// openConfigStore opens the TOML config. When the home directory is not
// writable it falls back to an in-memory store so read-only commands still
// work from environment variables.
func openConfigStore(configPath string) (driven.ConfigStore, string, error) {
	if configPath != "" {
		store, err := file.NewConfigStoreAt(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("open config %s: %w", configPath, err)
		}
		return store, filepath.Join(filepath.Dir(configPath), "prompts"), nil
	}

	store, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("Using in-memory settings: %v", err)
		return memory.NewConfigStore(nil), "", nil
	}
	return store, filepath.Join(filepath.Dir(store.Path()), "prompts"), nil
}

func engineFactory(settingsSvc driving.SettingsService, prompts driven.PromptStore) cli.EngineFactory {
	return func(ctx context.Context) (driving.Engine, error) {
		settings, err := settingsSvc.Get()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}

		res := &ai.InitResult{PromptStore: prompts}

		res.EmbeddingService, err = ai.CreateEmbeddingService(&settings.Embedding)
		if err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
		if res.EmbeddingService == nil {
			return nil, errors.New("no embedding provider configured; run 'upfund settings embedding'")
		}

		// Indexing never needs the LLM; answers fall back without one.
		res.LLMService, err = ai.CreateLLMService(&settings.LLM)
		if err != nil {
			logger.Warn("LLM unavailable, answers will use the fallback message: %v", err)
			res.LLMService = nil
		}

		res.VectorIndex, err = vector.CreateVectorIndex(ctx, &settings.VectorStore, res.EmbeddingService.Dimensions())
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("vector store: %w", err)
		}

		pipeline, err := postprocessors.DefaultPipeline(settings.Chunking)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("chunking pipeline: %w", err)
		}

		source := filesystem.New(
			settings.Ingestion.RawDocumentsDir,
			filesystem.WithRecursive(settings.Ingestion.Recursive),
		)

		engine, err := services.NewEngine(services.EngineConfig{
			Embedding:  res.EmbeddingService,
			LLM:        res.LLMService,
			Index:      res.VectorIndex,
			IndexName:  settings.VectorStore.Backend.String(),
			Source:     source,
			Extractors: extractors.NewDefaultRegistry(),
			Pipeline:   pipeline,
			Watcher:    source,
			Prompts:    res.PromptStore,
			Embedder: services.EmbedderConfig{
				Timeout:           settings.Embedding.Timeout,
				RequestsPerSecond: settings.Embedding.RequestsPerSecond,
				Workers:           settings.Ingestion.EmbedWorkers,
				Dimensions:        settings.Embedding.Dimensions,
			},
			Synthesizer: services.SynthesizerConfig{
				Timeout: settings.LLM.Timeout,
			},
			DefaultK: settings.Search.DefaultLimit,
		})
		if err != nil {
			res.Close()
			return nil, err
		}

		return &sourceClosingEngine{Engine: engine, source: source}, nil
	}
}

// sourceClosingEngine also closes the filesystem source.
type sourceClosingEngine struct {
	driving.Engine
	source *filesystem.Source
}

func (e *sourceClosingEngine) Close() error {
	err := e.Engine.Close()
	if cerr := e.source.Close(); err == nil {
		err = cerr
	}
	return err
}

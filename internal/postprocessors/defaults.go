package postprocessors

import (
	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/postprocessors/chunker"
	"github.com/custodia-labs/upfund/internal/postprocessors/normaliser"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("normaliser", buildNormaliser)
	r.Register("chunker", buildChunker)
}

// DefaultPipeline builds the normaliser and chunker pipeline for the
// given chunking settings.
func DefaultPipeline(c domain.ChunkingSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return FromConfig(r, domain.PipelineConfigFor(c))
}

func buildNormaliser(_ map[string]any) (driven.PostProcessor, error) {
	return normaliser.New(), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - unit (string): "chars" (default) or "tokens"
//   - chunk_size (int): Units per chunk (default: 1000)
//   - overlap (int): Overlapping units between chunks (default: 200)
//   - tokenizer_model (string): tiktoken model when unit is "tokens"
//   - tokenizer_dir (string): directory searched for BPE files first
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
		if unit, _ := cfg["unit"].(string); unit == string(domain.ChunkUnitTokens) {
			model, _ := cfg["tokenizer_model"].(string)
			if model == "" {
				model = domain.DefaultTokenizerModel
			}
			dir, _ := cfg["tokenizer_dir"].(string)
			tok, err := chunker.NewTiktokenTokenizer(model, dir)
			if err != nil {
				return nil, err
			}
			opts = append(opts, chunker.WithTokenizer(tok))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Ensure Synthesizer implements the interface.
var _ driving.AnswerService = (*Synthesizer)(nil)

// FallbackAnswer is returned whenever the generative model fails.
const FallbackAnswer = "An error occurred while generating the answer."

// DefaultGenerationTimeout bounds each generation request.
const DefaultGenerationTimeout = 60 * time.Second

// SynthesizerConfig configures a Synthesizer.
type SynthesizerConfig struct {
	// Timeout bounds the generation request (default: 60s).
	Timeout time.Duration

	// Options are passed to the model unchanged.
	Options driven.GenerateOptions
}

// Synthesizer builds a grounded prompt from hits and asks the model once.
type Synthesizer struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	searcher driving.SearchService
	timeout  time.Duration
	opts     driven.GenerateOptions
}

// NewSynthesizer creates a synthesizer. searcher is used by Ask and may be
// nil when only Synthesize is needed.
func NewSynthesizer(
	llm driven.LLMService,
	prompts driven.PromptStore,
	searcher driving.SearchService,
	cfg SynthesizerConfig,
) *Synthesizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGenerationTimeout
	}
	return &Synthesizer{
		llm:      llm,
		prompts:  prompts,
		searcher: searcher,
		timeout:  cfg.Timeout,
		opts:     cfg.Options,
	}
}

// Synthesize answers query from hits. It never fails: model errors yield
// FallbackAnswer. An empty hit set still produces a prompt.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, hits []domain.RetrievedHit) string {
	answer, err := s.Generate(ctx, query, hits)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return FallbackAnswer
	}
	return answer
}

// Generate is Synthesize with the failure reported as a
// *domain.GenerationFailure.
func (s *Synthesizer) Generate(ctx context.Context, query string, hits []domain.RetrievedHit) (string, error) {
	if s.llm == nil {
		return "", &domain.GenerationFailure{Err: domain.ErrLLMUnavailable}
	}

	prompt := BuildPrompt(s.template(), query, hits)
	logger.Debug("Prompt (%d chars, %d sources)", len(prompt), len(hits))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	answer, err := s.llm.Generate(ctx, prompt, s.opts)
	logger.Elapsed("Generation", start)
	if err != nil {
		return "", &domain.GenerationFailure{Err: err}
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", &domain.GenerationFailure{Err: errors.New("model returned an empty answer")}
	}
	return answer, nil
}

// Ask retrieves k hits for question and synthesizes an answer from them.
func (s *Synthesizer) Ask(ctx context.Context, question string, k int) domain.Answer {
	hits := []domain.RetrievedHit{}
	if s.searcher != nil {
		hits = s.searcher.Search(ctx, question, k)
	}
	return domain.Answer{
		Question: question,
		Text:     s.Synthesize(ctx, question, hits),
		Sources:  hits,
	}
}

func (s *Synthesizer) template() string {
	if s.prompts == nil {
		return driven.DefaultAnswerPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		logger.Debug("Using built-in answer prompt: %v", err)
		return driven.DefaultAnswerPrompt
	}
	if !strings.Contains(tmpl, driven.PlaceholderSources) || !strings.Contains(tmpl, driven.PlaceholderQuestion) {
		logger.Debug("Using built-in answer prompt: template lacks placeholders")
		return driven.DefaultAnswerPrompt
	}
	return tmpl
}

// BuildPrompt renders tmpl with the hits formatted as
// "Source: {title} -> {chunk}" blocks separated by blank lines, then query.
// Substitution is a single pass, so placeholder text inside hits or the
// query is left as is.
func BuildPrompt(tmpl, query string, hits []domain.RetrievedHit) string {
	sources := make([]string, len(hits))
	for i, h := range hits {
		sources[i] = fmt.Sprintf("Source: %s -> %s", h.Title, h.Chunk)
	}
	r := strings.NewReplacer(
		driven.PlaceholderSources, strings.Join(sources, "\n\n"),
		driven.PlaceholderQuestion, query,
	)
	return r.Replace(tmpl)
}

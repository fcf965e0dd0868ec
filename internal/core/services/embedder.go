package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
	"github.com/custodia-labs/upfund/internal/logger"
)

// Embedder defaults.
const (
	DefaultEmbedTimeout   = 30 * time.Second
	DefaultEmbedBatchSize = 64
)

// EmbedderConfig configures an Embedder.
type EmbedderConfig struct {
	// Timeout bounds each provider request (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles provider requests. Zero disables throttling.
	RequestsPerSecond float64

	// Workers bounds parallel per-text requests (default: 1).
	Workers int

	// Dimensions is the length of the zero vector given to failed texts.
	// Zero uses the provider's reported dimensions.
	Dimensions int

	// BatchSize is the number of texts sent per batch request (default: 64).
	BatchSize int
}

// Embedder wraps an EmbeddingService with per-request timeouts, a single
// retry, rate limiting and per-text failure isolation.
type Embedder struct {
	svc        driven.EmbeddingService
	timeout    time.Duration
	limiter    *rate.Limiter
	workers    int
	dimensions int
	batchSize  int
}

// NewEmbedder creates an Embedder around svc.
func NewEmbedder(svc driven.EmbeddingService, cfg EmbedderConfig) *Embedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultEmbedTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultEmbedBatchSize
	}
	if cfg.Dimensions <= 0 && svc != nil {
		cfg.Dimensions = svc.Dimensions()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Embedder{
		svc:        svc,
		timeout:    cfg.Timeout,
		limiter:    limiter,
		workers:    cfg.Workers,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
	}
}

// Dimensions returns the vector length produced for every text.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// EmbedTexts returns exactly one vector per text. A text that cannot be
// embedded gets a zero vector, and its slot in the returned error slice
// holds a *domain.EmbeddingFailure. Successful slots hold nil.
//
// Each batch is first sent as one request. If that fails, the batch is
// retried text by text so a single bad input cannot sink its neighbours.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string, mode domain.EmbeddingMode) ([][]float32, []error) {
	vectors := make([][]float32, len(texts))
	failures := make([]error, len(texts))
	if len(texts) == 0 {
		return vectors, failures
	}

	if e.svc == nil {
		for i := range texts {
			vectors[i] = e.zero()
			failures[i] = &domain.EmbeddingFailure{Index: i, Err: domain.ErrEmbeddingUnavailable}
		}
		return vectors, failures
	}

	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		batch, err := e.embedBatch(ctx, texts[start:end], mode)
		if err == nil {
			copy(vectors[start:end], batch)
			continue
		}

		logger.Debug("Batch %d-%d failed, embedding texts individually: %v", start, end-1, err)
		e.embedEach(ctx, texts, mode, start, end, vectors, failures)
	}

	return vectors, failures
}

// EmbedOne embeds a single text, with the same timeout and retry as
// EmbedTexts but without the zero-vector fallback.
func (e *Embedder) EmbedOne(ctx context.Context, text string, mode domain.EmbeddingMode) ([]float32, error) {
	if e.svc == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	return e.embedSingle(ctx, text, mode)
}

// embedBatch sends one batch request, retried once.
func (e *Embedder) embedBatch(ctx context.Context, texts []string, mode domain.EmbeddingMode) ([][]float32, error) {
	var vectors [][]float32
	err := e.withRetry(ctx, func(ctx context.Context) error {
		var err error
		vectors, err = e.svc.EmbedBatch(ctx, texts, mode)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(texts))
		}
		for _, v := range vectors {
			if err := e.checkDimensions(v); err != nil {
				return err
			}
		}
		return nil
	})
	return vectors, err
}

// embedEach embeds texts[start:end] one at a time across bounded workers.
func (e *Embedder) embedEach(
	ctx context.Context,
	texts []string,
	mode domain.EmbeddingMode,
	start, end int,
	vectors [][]float32,
	failures []error,
) {
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for i := start; i < end; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := e.embedSingle(ctx, texts[i], mode)
			if err != nil {
				vectors[i] = e.zero()
				failures[i] = &domain.EmbeddingFailure{Index: i, Err: err}
				return
			}
			vectors[i] = vec
		}(i)
	}
	wg.Wait()
}

func (e *Embedder) embedSingle(ctx context.Context, text string, mode domain.EmbeddingMode) ([]float32, error) {
	var vec []float32
	err := e.withRetry(ctx, func(ctx context.Context) error {
		var err error
		vec, err = e.svc.Embed(ctx, text, mode)
		if err != nil {
			return err
		}
		return e.checkDimensions(vec)
	})
	return vec, err
}

// withRetry runs fn under the per-request timeout, retrying once when the
// failure is transient.
func (e *Embedder) withRetry(ctx context.Context, fn func(context.Context) error) error {
	err := e.attempt(ctx, fn)
	if err == nil || !isTransient(ctx, err) {
		return err
	}

	logger.Debug("Retrying embedding request after: %v", err)
	return e.attempt(ctx, fn)
}

func (e *Embedder) attempt(ctx context.Context, fn func(context.Context) error) error {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return fn(ctx)
}

func (e *Embedder) checkDimensions(vec []float32) error {
	if e.dimensions > 0 && len(vec) != e.dimensions {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), e.dimensions)
	}
	return nil
}

func (e *Embedder) zero() []float32 {
	return make([]float32, e.dimensions)
}

// isTransient reports whether a failed request is worth repeating: timeouts,
// network errors, rate limits and server errors. The caller giving up, a
// rejected request and anything unrecognised are not.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, domain.ErrDimensionMismatch) || errors.Is(err, domain.ErrInvalidInput) {
		return false
	}

	var perr *domain.ProviderError
	if errors.As(err, &perr) && perr.StatusCode > 0 {
		return perr.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return isRateLimitMessage(err.Error())
}

// isRateLimitMessage catches quota errors from clients that only report them
// as text.
func isRateLimitMessage(msg string) bool {
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "quota")
}

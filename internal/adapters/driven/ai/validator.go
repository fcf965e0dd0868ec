package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// DefaultPingTimeout bounds each connectivity probe.
const DefaultPingTimeout = 5 * time.Second

// ConfigValidator checks provider settings by building the adapter and
// pinging it once.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator using DefaultPingTimeout.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{timeout: DefaultPingTimeout}
}

// ValidateEmbedding returns nil when no provider is configured.
// Unreachable providers are reported as domain.ErrEmbeddingUnavailable.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil || svc == nil {
		return err
	}
	return probe(svc, v.timeout, domain.ErrEmbeddingUnavailable)
}

// ValidateLLM returns nil when no provider is configured.
// Unreachable providers are reported as domain.ErrLLMUnavailable.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	if err != nil || svc == nil {
		return err
	}
	return probe(svc, v.timeout, domain.ErrLLMUnavailable)
}

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// probe pings svc and closes it.
func probe(svc pinger, timeout time.Duration, unavailable error) error {
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", unavailable, err)
	}
	return nil
}

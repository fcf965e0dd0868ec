package postprocessors

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/upfund/internal/core/ports/driven"
)

// ErrUnknownProcessor is returned by Build for an unregistered name.
var ErrUnknownProcessor = errors.New("unknown processor")

// BuilderFunc creates a PostProcessor from the generic per-processor map
// held in domain.PipelineConfig.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps processor names to builders. A later Register for the same
// name replaces the earlier builder.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]BuilderFunc)}
}

// Register adds a builder under name.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates the processor registered under name. The built processor
// must report the same name, so pipeline errors and logs stay traceable to
// the config entry.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcessor, name)
	}
	proc, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	if proc.Name() != name {
		return nil, fmt.Errorf("processor registered as %q reports name %q", name, proc.Name())
	}
	return proc, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}

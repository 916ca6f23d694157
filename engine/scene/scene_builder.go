package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-graph/engine/xform"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLogger sets the logger used for load warnings. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry sets the registry used to construct XForms and resolve
// callbacks when loading. Defaults to xform.DefaultRegistry().
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRegistry(r *xform.Registry) SceneBuilderOption {
	return func(s *scene) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithCullWorkers sets the number of worker goroutines Cull fans bounds tests
// out to. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.cullWorkers = max(n, 1)
	}
}

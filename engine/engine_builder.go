package engine

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/engine/config"
	"github.com/Carmen-Shannon/oxy-graph/engine/scene"
	"github.com/Carmen-Shannon/oxy-graph/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the frame rate Run aims for.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target frames per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickPeriod(fps)
	}
}

// WithWindow attaches a window. Its input is polled every frame and its size
// drives the draw camera's aspect ratio.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene sets the scene the engine updates instead of creating an empty one.
//
// Parameters:
//   - s: the Scene to drive
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithUpdateMask sets the state mask passed to each scene update.
//
// Parameters:
//   - mask: update mask (default scene.StateAny)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUpdateMask(mask scene.State) EngineBuilderOption {
	return func(e *engine) {
		e.updateMask = mask
	}
}

// WithLogger sets the logger used by the engine, its profiler and the scene
// it creates.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConfig applies the engine section of cfg: tick rate, profiling,
// profile interval and cull worker count.
//
// Parameters:
//   - cfg: application settings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickPeriod(float64(cfg.Engine.TickRate))
		e.profilingEnabled = cfg.Engine.Profiling
		if d := cfg.Engine.Interval(); d > 0 {
			e.profileInterval = d
		}
		e.cullWorkers = cfg.Engine.CullWorkers
	}
}

// WithProfileInterval sets how often the profiler logs.
//
// Parameters:
//   - d: reporting interval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfileInterval(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d > 0 {
			e.profileInterval = d
		}
	}
}

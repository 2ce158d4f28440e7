package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/config"
	"github.com/Carmen-Shannon/oxy-demos/engine/profiler"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer"
	"github.com/Carmen-Shannon/oxy-demos/engine/scheduler"
	"github.com/Carmen-Shannon/oxy-demos/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the configuration. It is validated by NewEngine.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithWindow runs the demo in a window. The window is the frame host and the
// wgpu renderer presents to it unless the config selects the headless backend.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithHost sets a custom frame host. Run cannot drive a custom host; the
// caller steps it.
//
// Parameters:
//   - h: the host
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHost(h scheduler.FrameHost) EngineBuilderOption {
	return func(e *engine) {
		e.host = h
	}
}

// WithFrameLimit makes a headless Run return after n frames. Zero runs until
// the context is done.
//
// Parameters:
//   - n: the number of frames
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(n int) EngineBuilderOption {
	return func(e *engine) {
		e.frames = max(n, 0)
	}
}

// WithRenderer sets the renderer instead of creating one from the config.
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithConfigWatch reloads the config file at path while running and resets the
// demo with each valid version.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfigWatch(path string) EngineBuilderOption {
	return func(e *engine) {
		e.watchPath = path
	}
}

// WithProfiler sets the profiler ticked each frame, overriding the config's
// profiling switch.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTimeProvider sets the clock used by the scheduler and profiler.
func WithTimeProvider(tp clock.TimeProvider) EngineBuilderOption {
	return func(e *engine) {
		e.clock = tp
	}
}

// WithLogger sets the logger every component logs through.
func WithLogger(l *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if l != nil {
			e.logger = l
		}
	}
}

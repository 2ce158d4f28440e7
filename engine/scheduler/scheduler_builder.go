package scheduler

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/input"
	"github.com/Carmen-Shannon/oxy-demos/engine/profiler"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
)

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*scheduler)

// WithHost sets the frame host the loop re-arms itself on.
//
// Parameters:
//   - h: the frame host
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithHost(h FrameHost) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.host = h
	}
}

// WithSimulation sets the simulation advanced each frame.
//
// Parameters:
//   - sim: the simulation
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithSimulation(sim simulation.Simulation) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.sim = sim
	}
}

// WithSimulationFactory makes Reset replace the simulation with a freshly built
// one instead of calling its own Reset.
func WithSimulationFactory(f SimulationFactory) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.factory = f
	}
}

// WithController sets the controller updated after the simulation.
func WithController(c Controller) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.controller = c
	}
}

// WithRenderFunc sets the render request issued at the end of every frame,
// paused or not.
func WithRenderFunc(fn func() error) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.render = fn
	}
}

// WithTimeProvider sets the clock used to compute frame deltas.
func WithTimeProvider(tp clock.TimeProvider) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.clock = tp
	}
}

// WithEventBus subscribes the scheduler to control events; queued events are
// delivered at the start of each frame.
func WithEventBus(b input.Bus) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.bus = b
	}
}

// WithProfiler sets a profiler ticked once per frame.
func WithProfiler(p *profiler.Profiler) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.profiler = p
	}
}

// WithLogger sets the logger faults and control actions are written to.
func WithLogger(l *slog.Logger) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.logger = l
	}
}

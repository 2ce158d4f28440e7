// Package scheduler drives the per-frame loop: it owns the simulation context,
// drains control events, advances the simulation and the camera controller,
// requests a render and re-arms itself on the host's frame primitive.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/input"
	"github.com/Carmen-Shannon/oxy-demos/engine/profiler"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
)

// Controller is updated once per frame after the simulation, typically a
// camera/viewport controller.
type Controller interface {
	Update(dt float32)
}

// SimulationFactory builds a fresh simulation on reset, replacing the previous one.
type SimulationFactory func(previous simulation.Simulation) (simulation.Simulation, error)

// Scheduler is the frame loop.
type Scheduler interface {
	// Start begins requesting frames. Calling Start while running has no effect,
	// so there is never more than one frame in flight.
	Start()

	// Stop ceases requesting frames. A frame already requested runs as a no-op.
	Stop()

	// Running reports whether the loop is started.
	//
	// Returns:
	//   - bool: true between Start and Stop
	Running() bool

	// TogglePause flips the simulation between running and paused. Rendering
	// continues while paused. Must be called on the loop goroutine; other
	// goroutines publish a control event instead.
	//
	// Returns:
	//   - simulation.State: the new state
	TogglePause() simulation.State

	// Reset recreates the population and the clock from the initial
	// configuration. Must be called on the loop goroutine.
	//
	// Returns:
	//   - error: error if the population could not be recreated; the loop keeps going
	Reset() error

	// Simulation returns the current simulation.
	//
	// Returns:
	//   - simulation.Simulation: the simulation, or nil if none is set
	Simulation() simulation.Simulation

	// Context returns the simulation context owned by the scheduler.
	//
	// Returns:
	//   - *simulation.Context: the context
	Context() *simulation.Context

	// Faults returns the number of faults contained so far (panics in a stage,
	// render errors, failed resets).
	//
	// Returns:
	//   - uint64: the fault count
	Faults() uint64
}

type scheduler struct {
	host       FrameHost
	sim        simulation.Simulation
	factory    SimulationFactory
	controller Controller
	render     func() error
	clock      clock.TimeProvider
	bus        input.Bus
	profiler   *profiler.Profiler
	logger     *slog.Logger

	ctx *simulation.Context

	mu         sync.Mutex
	running    bool
	generation uint64

	faults atomic.Uint64
}

var _ Scheduler = &scheduler{}

// NewScheduler creates a stopped scheduler.
//
// Parameters:
//   - options: builder options; WithHost is required
//
// Returns:
//   - Scheduler: the scheduler
//   - error: error if no host was given
func NewScheduler(options ...SchedulerBuilderOption) (Scheduler, error) {
	s := &scheduler{
		clock:  clock.NewTimeProvider(),
		logger: slog.Default(),
		ctx:    simulation.NewContext(),
	}

	for _, option := range options {
		option(s)
	}

	if s.host == nil {
		return nil, fmt.Errorf("scheduler needs a frame host")
	}
	s.logger = s.logger.With("component", "scheduler")

	if s.bus != nil {
		s.bus.Subscribe(s.handleControl)
	}

	return s, nil
}

func (s *scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.logger.Debug("loop started", "generation", gen)
	s.host.RequestFrame(func() { s.tick(gen) })
}

func (s *scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.running = false
		s.logger.Debug("loop stopped", "generation", s.generation)
	}
}

func (s *scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// current reports whether a frame armed for generation gen should still run.
func (s *scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.generation == gen
}

// tick runs one frame. The next frame is requested by a deferred call so that a
// fault in any stage never ends the loop.
func (s *scheduler) tick(gen uint64) {
	if !s.current(gen) {
		return
	}
	defer s.rearm(gen)

	simulated := false
	defer func() {
		if s.profiler != nil {
			s.guard("profiler", func() { s.profiler.Tick(simulated, s.faults.Load()) })
		}
	}()

	if s.bus != nil {
		if !s.guard("events", func() { s.bus.Process() }) {
			return
		}
	}

	dt := s.ctx.Advance(s.clock.Now())

	if s.sim != nil && !s.ctx.Paused() {
		if !s.guard("simulation", func() { s.sim.Update(s.ctx, dt) }) {
			return
		}
		s.ctx.MarkTick()
		simulated = true
	}

	if s.controller != nil {
		if !s.guard("controller", func() { s.controller.Update(dt) }) {
			return
		}
	}

	if s.render != nil {
		s.guard("render", func() {
			if err := s.render(); err != nil {
				s.faults.Add(1)
				s.logger.Error("render failed", "frame", s.ctx.Frames(), "error", err)
			}
		})
	}
}

func (s *scheduler) rearm(gen uint64) {
	if !s.current(gen) {
		return
	}
	s.host.RequestFrame(func() { s.tick(gen) })
}

// guard runs one stage of a frame and contains a panic inside it.
//
// Returns:
//   - bool: false if the stage panicked
func (s *scheduler) guard(stage string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.faults.Add(1)
			s.logger.Error("frame stage panicked", "stage", stage, "frame", s.ctx.Frames(), "panic", r)
			ok = false
		}
	}()
	fn()
	return true
}

func (s *scheduler) handleControl(e input.ControlEvent) {
	switch e.Kind {
	case input.ControlTogglePause:
		state := s.TogglePause()
		s.logger.Info("pause toggled", "state", state.String(), "source", e.Source)
	case input.ControlReset:
		if err := s.Reset(); err != nil {
			s.logger.Error("reset failed", "source", e.Source, "error", err)
			return
		}
		s.logger.Info("simulation reset", "source", e.Source)
	}
}

func (s *scheduler) TogglePause() simulation.State {
	return s.ctx.TogglePause()
}

func (s *scheduler) Reset() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reset panicked: %v", r)
		}
		if err != nil {
			s.faults.Add(1)
		}
	}()

	s.ctx.Reset()

	if s.factory != nil {
		next, ferr := s.factory(s.sim)
		if ferr != nil {
			return fmt.Errorf("failed to rebuild simulation: %w", ferr)
		}
		s.sim = next
		return nil
	}
	if s.sim != nil {
		if rerr := s.sim.Reset(); rerr != nil {
			return fmt.Errorf("failed to reset %s: %w", s.sim.Name(), rerr)
		}
	}
	return nil
}

func (s *scheduler) Simulation() simulation.Simulation {
	return s.sim
}

func (s *scheduler) Context() *simulation.Context {
	return s.ctx
}

func (s *scheduler) Faults() uint64 {
	return s.faults.Load()
}

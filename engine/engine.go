package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/config"
	"github.com/Carmen-Shannon/oxy-demos/engine/input"
	"github.com/Carmen-Shannon/oxy-demos/engine/profiler"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer"
	"github.com/Carmen-Shannon/oxy-demos/engine/scene"
	"github.com/Carmen-Shannon/oxy-demos/engine/scheduler"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/balls"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/boxfield"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/fireflies"
	"github.com/Carmen-Shannon/oxy-demos/engine/window"
	"github.com/chewxy/math32"
)

// Demo names one of the bundled simulations.
type Demo string

const (
	DemoBalls     Demo = "balls"
	DemoFireflies Demo = "fireflies"
	DemoBoxes     Demo = "boxes"
)

// Demos lists every demo in presentation order.
var Demos = []Demo{DemoBalls, DemoFireflies, DemoBoxes}

// ErrUnknownDemo is returned for a demo name that is not in Demos.
var ErrUnknownDemo = errors.New("unknown demo")

// ParseDemo resolves a demo by name.
//
// Parameters:
//   - name: the demo name
//
// Returns:
//   - Demo: the demo
//   - error: ErrUnknownDemo if the name is not recognized
func ParseDemo(name string) (Demo, error) {
	for _, d := range Demos {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownDemo, name)
}

// Summary describes a finished or running session.
type Summary struct {
	Demo       Demo
	Population int
	Frames     uint64
	Ticks      uint64
	Faults     uint64
	State      simulation.State
}

// Engine wires one demo together: the scene and its camera, the renderer, the
// frame scheduler with its host, the key bindings and the optional config
// watcher. Everything runs on the host's loop goroutine except the watcher,
// which only publishes control events.
type Engine interface {
	// Demo returns the demo being run.
	Demo() Demo

	// Scene returns the scene the simulation publishes into.
	Scene() scene.Scene

	// Scheduler returns the frame scheduler.
	Scheduler() scheduler.Scheduler

	// Bus returns the control event bus.
	Bus() input.Bus

	// Config returns the configuration the next reset will use.
	Config() config.Config

	// ApplyConfig stores cfg and publishes a reset so the loop rebuilds the
	// population from it on its next frame. Safe to call from any goroutine.
	//
	// Parameters:
	//   - cfg: a validated configuration
	ApplyConfig(cfg config.Config)

	// Start begins scheduling frames on the host.
	Start()

	// Stop stops scheduling frames.
	Stop()

	// Run starts the scheduler and drives the host until ctx is done, the
	// window closes, or the configured frame count has run. It releases the
	// renderer before returning.
	//
	// Parameters:
	//   - ctx: cancels the run
	//
	// Returns:
	//   - error: error if the host cannot be driven
	Run(ctx context.Context) error

	// Summary reports counters for the session so far.
	Summary() Summary
}

type engine struct {
	demo   Demo
	logger *slog.Logger
	clock  clock.TimeProvider

	mu  sync.Mutex
	cfg config.Config

	window     window.Window
	host       scheduler.FrameHost
	ticker     *scheduler.TickerHost
	frames     int
	renderer   renderer.Renderer
	camera     camera.Camera
	controller camera.CameraController
	scene      scene.Scene
	bus        input.Bus
	bindings   *input.Bindings
	profiler   *profiler.Profiler
	scheduler  scheduler.Scheduler
	watchPath  string

	dragging   bool
	lastCursor [2]int32
}

var _ Engine = &engine{}

// NewEngine builds a demo. Without WithWindow or WithHost it runs headless on a
// ticker host at the configured tick rate.
//
// Parameters:
//   - demo: the demo to run
//   - options: builder options
//
// Returns:
//   - Engine: the engine, stopped
//   - error: error if the configuration is invalid or a component cannot be created
func NewEngine(demo Demo, options ...EngineBuilderOption) (Engine, error) {
	if _, err := ParseDemo(string(demo)); err != nil {
		return nil, err
	}
	e := &engine{
		demo:   demo,
		cfg:    config.Default(),
		logger: slog.Default(),
		clock:  clock.NewTimeProvider(),
	}
	for _, option := range options {
		option(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	e.logger = e.logger.With("demo", string(demo))

	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *engine) build() error {
	cfg := e.cfg

	switch {
	case e.host != nil:
	case e.window != nil:
		e.host = e.window
	default:
		e.ticker = scheduler.NewTickerHost(cfg.Scheduler.TickRate)
		e.host = e.ticker
	}

	e.controller = camera.NewCameraController(
		camera.WithRadius(e.framingRadius(cfg)*2),
		camera.WithAzimuth(cfg.Camera.Azimuth),
		camera.WithElevation(cfg.Camera.Elevation),
		camera.WithRadiusBounds(cfg.Camera.Near*10, cfg.Camera.Far/2),
		camera.WithDampingFactor(cfg.Camera.Damping),
	)
	width, height := cfg.Window.Width, cfg.Window.Height
	if e.window != nil {
		width, height = e.window.Width(), e.window.Height()
	}
	e.camera = camera.NewCamera(
		camera.WithFov(cfg.Camera.FOV*math32.Pi/180),
		camera.WithAspect(float32(width)/float32(max(height, 1))),
		camera.WithClip(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithController(e.controller),
	)

	if e.renderer == nil {
		r, err := e.newRenderer(cfg)
		if err != nil {
			return err
		}
		e.renderer = r
	}

	e.scene = scene.NewScene(string(e.demo), e.camera, e.renderer,
		scene.WithClearColor(cfg.Renderer.ClearColor),
		scene.WithPackWorkers(max(runtime.NumCPU()-1, 1)),
	)

	sim, err := e.newSimulation(nil)
	if err != nil {
		return err
	}

	e.bus = input.NewBus()
	e.bindings = input.NewBindings(e.bus)

	if cfg.Scheduler.Profiling && e.profiler == nil {
		e.profiler = profiler.NewProfiler(
			profiler.WithLogger(e.logger),
			profiler.WithTimeProvider(e.clock),
		)
	}

	e.scheduler, err = scheduler.NewScheduler(
		scheduler.WithHost(e.host),
		scheduler.WithSimulation(sim),
		scheduler.WithSimulationFactory(e.newSimulation),
		scheduler.WithController(e.controller),
		scheduler.WithRenderFunc(e.scene.Draw),
		scheduler.WithTimeProvider(e.clock),
		scheduler.WithEventBus(e.bus),
		scheduler.WithProfiler(e.profiler),
		scheduler.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}

	if e.window != nil {
		e.bindWindow()
	}
	e.controller.FrameTo(0, 0, 0, e.framingRadius(cfg), cfg.Camera.FrameSeconds)
	return nil
}

func (e *engine) newRenderer(cfg config.Config) (renderer.Renderer, error) {
	mode := renderer.PresentModeUncapped
	if cfg.Renderer.VSync {
		mode = renderer.PresentModeVSync
	}
	opts := []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithLogger(e.logger),
	}
	if e.window == nil || cfg.Renderer.Backend == renderer.BackendTypeHeadless.String() {
		return renderer.NewRenderer(renderer.BackendTypeHeadless, nil, opts...)
	}
	return renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, opts...)
}

// newSimulation is the scheduler's reset factory. It builds the demo from the
// latest configuration and then removes the previous population's objects from
// the scene. A failed build leaves the previous population in place.
func (e *engine) newSimulation(previous simulation.Simulation) (simulation.Simulation, error) {
	cfg := e.Config()
	before := e.scene.Objects()

	var (
		sim simulation.Simulation
		err error
	)
	switch e.demo {
	case DemoBalls:
		sim, err = balls.NewBalls(e.scene, cfg.Balls.Options()...)
	case DemoFireflies:
		sim, err = fireflies.NewFireflies(e.scene, cfg.Fireflies.Options()...)
	case DemoBoxes:
		sim, err = boxfield.NewBoxField(e.scene, cfg.BoxField.Options()...)
	}
	if err != nil {
		// drop whatever the failed build spawned; the previous population stays
		kept := make(map[uint64]struct{}, len(before))
		for _, obj := range before {
			kept[obj.ID()] = struct{}{}
		}
		for _, obj := range e.scene.Objects() {
			if _, ok := kept[obj.ID()]; !ok {
				e.scene.Remove(obj.ID())
			}
		}
		return nil, fmt.Errorf("failed to build %s: %w", e.demo, err)
	}
	for _, obj := range before {
		e.scene.Remove(obj.ID())
	}

	e.scene.SetClearColor(cfg.Renderer.ClearColor)
	e.controller.SetDampingFactor(cfg.Camera.Damping)
	e.logger.Info("population created", "population", sim.Len(), "replaces", previous != nil)
	return sim, nil
}

// framingRadius is the orbit radius that fits the demo's population in view.
func (e *engine) framingRadius(cfg config.Config) float32 {
	var extent float64
	switch e.demo {
	case DemoBalls:
		extent = cfg.Balls.Spread * 2
	case DemoFireflies:
		extent = cfg.Fireflies.OrbitRadius * 4
	case DemoBoxes:
		extent = cfg.BoxField.Radius * 2.2
	}
	return max(cfg.Camera.Radius, float32(extent))
}

// bindWindow routes window input to the bindings, the camera and the scene.
// Control bindings fire on the initial press only; held keys that are not
// bound drive the camera on every repeat.
func (e *engine) bindWindow() {
	e.window.SetKeyPressCallback(e.bindings.OnKeyPress)
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if e.bindings.Bound(keyCode) {
			return
		}
		switch keyCode {
		case common.KeyW:
			e.controller.PanForward(1)
		case common.KeyS:
			e.controller.PanForward(-1)
		case common.KeyD:
			e.controller.PanRight(1)
		case common.KeyA:
			e.controller.PanRight(-1)
		case common.KeyE:
			e.controller.PanUp(1)
		case common.KeyQ:
			e.controller.PanUp(-1)
		case common.KeyLeft:
			e.controller.OrbitLeft()
		case common.KeyRight:
			e.controller.OrbitRight()
		case common.KeyUp:
			e.controller.OrbitUp()
		case common.KeyDown:
			e.controller.OrbitDown()
		case common.KeyF:
			cfg := e.Config()
			e.controller.FrameTo(0, 0, 0, e.framingRadius(cfg), cfg.Camera.FrameSeconds)
		}
	})
	e.window.SetScrollCallback(e.controller.Zoom)
	e.window.SetMiddleMouseDownCallback(func(x, y int32) {
		e.dragging = true
		e.lastCursor = [2]int32{x, y}
	})
	e.window.SetMiddleMouseUpCallback(func(x, y int32) {
		e.dragging = false
	})
	e.window.SetMouseMoveCallback(func(x, y int32) {
		if !e.dragging {
			return
		}
		e.controller.OrbitBy(float32(x-e.lastCursor[0]), float32(y-e.lastCursor[1]))
		e.lastCursor = [2]int32{x, y}
	})
	e.window.SetResizeCallback(e.scene.Resize)
}

func (e *engine) Demo() Demo {
	return e.demo
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Scheduler() scheduler.Scheduler {
	return e.scheduler
}

func (e *engine) Bus() input.Bus {
	return e.bus
}

func (e *engine) Config() config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

func (e *engine) ApplyConfig(cfg config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	e.bus.Publish(input.ControlEvent{Kind: input.ControlReset, Source: "config"})
}

func (e *engine) Start() {
	e.scheduler.Start()
}

func (e *engine) Stop() {
	e.scheduler.Stop()
}

func (e *engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if e.watchPath != "" {
		go func() {
			if err := config.Watch(ctx, e.watchPath, e.logger, e.ApplyConfig); err != nil {
				e.logger.Error("config watch stopped", "error", err)
			}
		}()
	}

	e.scheduler.Start()
	defer e.renderer.Release()
	defer e.scheduler.Stop()

	e.logger.Info("running", "population", e.scheduler.Simulation().Len(), "backend", e.renderer.BackendType().String())

	switch {
	case e.window != nil:
		e.window.SetUpdateCallback(func() {
			if ctx.Err() != nil {
				e.window.RequestClose()
			}
		})
		e.window.ProcessMessages()
		e.scheduler.Stop()
		e.renderer.Release()
		return e.window.Close()
	case e.ticker != nil:
		if err := e.ticker.RunFrames(ctx, e.frames); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("host %T has no run loop; drive it directly", e.host)
	}
}

func (e *engine) Summary() Summary {
	ctx := e.scheduler.Context()
	s := Summary{
		Demo:   e.demo,
		Frames: e.renderer.Frames(),
		Ticks:  ctx.Ticks(),
		Faults: e.scheduler.Faults(),
		State:  ctx.State(),
	}
	if sim := e.scheduler.Simulation(); sim != nil {
		s.Population = sim.Len()
	}
	return s
}

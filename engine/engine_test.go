package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
	"github.com/Carmen-Shannon/oxy-demos/engine/config"
	"github.com/Carmen-Shannon/oxy-demos/engine/input"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer"
	"github.com/Carmen-Shannon/oxy-demos/engine/scheduler"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Renderer.Backend = "headless"
	cfg.Balls.Count = 12
	cfg.Fireflies.Count = 20
	cfg.BoxField.Count = 30
	return cfg
}

type manualEngine struct {
	Engine
	host  *scheduler.ManualHost
	clock *clock.MockTimeProvider
}

func (m *manualEngine) step(t *testing.T, frames int) {
	t.Helper()
	for range frames {
		m.clock.Advance(16 * time.Millisecond)
		require.Equal(t, 1, m.host.Step())
	}
}

func newManualEngine(t *testing.T, demo Demo, cfg config.Config) *manualEngine {
	t.Helper()
	host := scheduler.NewManualHost()
	tp := clock.NewMockTimeProvider(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	e, err := NewEngine(demo,
		WithConfig(cfg),
		WithHost(host),
		WithTimeProvider(tp),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	return &manualEngine{Engine: e, host: host, clock: tp}
}

func TestParseDemo(t *testing.T) {
	for _, d := range Demos {
		got, err := ParseDemo(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	_, err := ParseDemo("orbits")
	assert.ErrorIs(t, err, ErrUnknownDemo)

	_, err = NewEngine("orbits")
	assert.ErrorIs(t, err, ErrUnknownDemo)
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Balls.Count = -1

	_, err := NewEngine(DemoBalls, WithConfig(cfg), WithHost(scheduler.NewManualHost()), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, simulation.ErrConfiguration)
}

func TestEnginePopulatesSceneForEveryDemo(t *testing.T) {
	cfg := smallConfig()
	want := map[Demo]int{
		DemoBalls:     cfg.Balls.Count,
		DemoFireflies: cfg.Fireflies.Count,
		DemoBoxes:     cfg.BoxField.Count,
	}
	for _, d := range Demos {
		t.Run(string(d), func(t *testing.T) {
			e := newManualEngine(t, d, cfg)
			assert.Equal(t, d, e.Demo())
			assert.Equal(t, want[d], e.Scene().Count())
			assert.Equal(t, want[d], e.Scheduler().Simulation().Len())
			assert.Equal(t, renderer.BackendTypeHeadless, e.Scene().Renderer().BackendType())
		})
	}
}

func TestEngineRendersEachStep(t *testing.T) {
	e := newManualEngine(t, DemoBalls, smallConfig())
	assert.Equal(t, 0, e.host.Pending())

	e.Start()
	e.step(t, 5)

	s := e.Summary()
	assert.Equal(t, DemoBalls, s.Demo)
	assert.Equal(t, uint64(5), s.Frames)
	assert.Equal(t, uint64(5), s.Ticks)
	assert.Zero(t, s.Faults)
	assert.Equal(t, simulation.StateRunning, s.State)
	assert.Equal(t, 12, s.Population)

	last := e.Scene().Renderer().LastFrame()
	assert.Len(t, last.Instances, 12)

	e.Stop()
	assert.Equal(t, 1, e.host.Step())
	assert.Equal(t, 0, e.host.Pending())
}

func TestEnginePauseStopsTicksButKeepsRendering(t *testing.T) {
	e := newManualEngine(t, DemoFireflies, smallConfig())
	e.Start()
	e.step(t, 2)

	e.Bus().Publish(input.ControlEvent{Kind: input.ControlTogglePause, Source: "test"})
	e.step(t, 3)

	s := e.Summary()
	assert.Equal(t, simulation.StatePaused, s.State)
	assert.Equal(t, uint64(2), s.Ticks)
	assert.Equal(t, uint64(5), s.Frames)
}

func TestEngineApplyConfigRebuildsPopulation(t *testing.T) {
	e := newManualEngine(t, DemoBalls, smallConfig())
	e.Start()
	e.step(t, 3)

	next := smallConfig()
	next.Balls.Count = 40
	next.Renderer.ClearColor = [4]float32{1, 0, 0, 1}
	e.ApplyConfig(next)
	assert.Equal(t, 40, e.Config().Balls.Count)

	e.step(t, 1)

	s := e.Summary()
	assert.Equal(t, 40, s.Population)
	assert.Equal(t, 40, e.Scene().Count())
	assert.Equal(t, [4]float32{1, 0, 0, 1}, e.Scene().ClearColor())
	// the reset clears the tick count before the rebuilt population's first tick
	assert.Equal(t, uint64(1), s.Ticks)
	assert.Zero(t, s.Faults)
}

func TestEngineFailedResetKeepsPopulation(t *testing.T) {
	e := newManualEngine(t, DemoBoxes, smallConfig())
	e.Start()
	e.step(t, 1)
	before := e.Scheduler().Simulation()

	bad := smallConfig()
	bad.BoxField.Count = -5
	e.ApplyConfig(bad)
	e.step(t, 2)

	s := e.Summary()
	assert.Same(t, before, e.Scheduler().Simulation())
	assert.Equal(t, 30, s.Population)
	assert.Equal(t, 30, e.Scene().Count())
	assert.Equal(t, uint64(1), s.Faults)
	assert.True(t, e.Scheduler().Running())
}

func TestEngineRunWithoutLoopErrors(t *testing.T) {
	e := newManualEngine(t, DemoBalls, smallConfig())
	err := e.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run loop")
}

func TestEngineRunHeadlessFrameLimit(t *testing.T) {
	cfg := smallConfig()
	cfg.Scheduler.TickRate = 1000

	e, err := NewEngine(DemoFireflies,
		WithConfig(cfg),
		WithFrameLimit(4),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	s := e.Summary()
	assert.Equal(t, uint64(4), s.Frames)
	assert.False(t, e.Scheduler().Running())
	assert.ErrorIs(t, e.Scene().Draw(), renderer.ErrReleased)
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	cfg := smallConfig()
	cfg.Scheduler.TickRate = 1000

	e, err := NewEngine(DemoBoxes, WithConfig(cfg), WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.False(t, errors.Is(err, context.Canceled))
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestEngineResetsDoNotGrowGoroutines(t *testing.T) {
	cfg := smallConfig()
	cfg.Balls.Count = 30
	cfg.Balls.Mode = "snapshot"
	cfg.Balls.Workers = 5
	cfg.Balls.ParallelThreshold = 0

	e := newManualEngine(t, DemoBalls, cfg)
	e.Start()
	e.step(t, 2)
	before := runtime.NumGoroutine()

	for i := range 25 {
		next := cfg
		next.Balls.Count = 30 + i
		e.ApplyConfig(next)
		e.step(t, 2)
	}

	assert.Equal(t, 54, e.Summary().Population)
	assert.Zero(t, e.Summary().Faults)
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}

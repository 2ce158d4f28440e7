package scene

import (
	"runtime"
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/Carmen-Shannon/oxy-demos/engine/game_object"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation/balls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, nil)
	require.NoError(t, err)
	cam := camera.NewCamera(camera.WithController(camera.NewCameraController()))
	return NewScene("test", cam, r, options...)
}

func TestSpawnRegistersGameObjects(t *testing.T) {
	s := newTestScene(t)

	h := s.Spawn(simulation.SpawnSpec{Name: "ball", Color: [4]float32{1, 0, 0, 1}, Scale: 2})
	h.SetPosition(1, 2, 3)

	obj, ok := h.(game_object.GameObject)
	require.True(t, ok)
	assert.Equal(t, uint64(1), obj.ID())
	assert.Equal(t, "ball", obj.Name())
	assert.Same(t, obj, s.Get(obj.ID()))

	sx, _, _ := obj.Scale()
	assert.Equal(t, float32(2), sx)
	assert.Equal(t, 1, s.Count())
}

func TestSpawnDefaultsNonPositiveScale(t *testing.T) {
	s := newTestScene(t)
	obj := s.Spawn(simulation.SpawnSpec{Name: "x"}).(game_object.GameObject)
	sx, _, _ := obj.Scale()
	assert.Equal(t, float32(1), sx)
}

func TestReleaseRemovesAndIgnoresForeignHandles(t *testing.T) {
	s := newTestScene(t)
	a := s.Spawn(simulation.SpawnSpec{Name: "a"})
	b := s.Spawn(simulation.SpawnSpec{Name: "b"})

	s.Release(a)
	s.Release(a)
	s.Release(&simulation.DetachedHandle{})
	assert.Equal(t, 1, s.Count())

	objs := s.Objects()
	require.Len(t, objs, 1)
	assert.Same(t, b, objs[0])
}

func TestAddKeepsIDOrderAndAvoidsCollisions(t *testing.T) {
	s := newTestScene(t)
	s.Add(game_object.NewGameObject(game_object.WithID(10)))
	s.Add(game_object.NewGameObject(game_object.WithID(4)))
	id := s.Add(game_object.NewGameObject())
	assert.Equal(t, uint64(11), id)

	var ids []uint64
	for _, o := range s.Objects() {
		ids = append(ids, o.ID())
	}
	assert.Equal(t, []uint64{4, 10, 11}, ids)

	s.Remove(10)
	s.Remove(99)
	assert.Equal(t, 2, s.Count())
	assert.Nil(t, s.Get(10))
}

func TestWithObjectsSeedsRegistry(t *testing.T) {
	s := newTestScene(t, WithObjects(
		game_object.NewGameObject(game_object.WithID(5)),
		game_object.NewGameObject(),
	))
	assert.Equal(t, 2, s.Count())
	id := s.Spawn(simulation.SpawnSpec{}).(game_object.GameObject).ID()
	assert.Greater(t, id, uint64(5))
}

func TestBuildFrameSkipsDisabledObjects(t *testing.T) {
	s := newTestScene(t, WithClearColor([4]float32{0.1, 0.2, 0.3, 1}))
	a := s.Spawn(simulation.SpawnSpec{Name: "a", Scale: 1, Color: [4]float32{1, 1, 1, 1}})
	b := s.Spawn(simulation.SpawnSpec{Name: "b", Scale: 0.5})
	a.SetPosition(1, 0, 0)
	b.SetPosition(2, 0, 0)
	b.(game_object.GameObject).SetEnabled(false)

	frame := s.BuildFrame()
	require.Len(t, frame.Instances, 1)
	assert.Equal(t, [3]float32{1, 0, 0}, frame.Instances[0].Position)
	assert.Equal(t, float32(1), frame.Instances[0].Scale)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, frame.Clear)
}

func TestParallelPackingMatchesSerial(t *testing.T) {
	serial := newTestScene(t)
	parallel := newTestScene(t, WithPackWorkers(4), WithPackThreshold(8))
	for i := range 100 {
		for _, s := range []Scene{serial, parallel} {
			h := s.Spawn(simulation.SpawnSpec{Name: "p", Scale: float32(i%3 + 1)})
			h.SetPosition(float32(i), float32(-i), 0.5)
		}
	}

	want := serial.BuildFrame().Instances
	got := parallel.BuildFrame().Instances
	assert.Equal(t, want, got)
}

func TestRepeatedScenesShareWorkers(t *testing.T) {
	warm := newTestScene(t, WithPackWorkers(7), WithPackThreshold(1))
	warm.Spawn(simulation.SpawnSpec{Name: "w"})
	warm.Spawn(simulation.SpawnSpec{Name: "w"})
	warm.BuildFrame()
	before := runtime.NumGoroutine()

	for range 30 {
		s := newTestScene(t, WithPackWorkers(7), WithPackThreshold(1))
		for range 10 {
			s.Spawn(simulation.SpawnSpec{Name: "p"})
		}
		require.Len(t, s.BuildFrame().Instances, 10)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}

func TestDrawRendersFrame(t *testing.T) {
	s := newTestScene(t)
	s.Spawn(simulation.SpawnSpec{Name: "a", Scale: 1})

	require.NoError(t, s.Draw())
	assert.Equal(t, uint64(1), s.Renderer().Frames())
	assert.Len(t, s.Renderer().LastFrame().Instances, 1)

	s.SetRenderer(nil)
	assert.ErrorIs(t, s.Draw(), ErrNoRenderer)
}

func TestResizeUpdatesCameraAspect(t *testing.T) {
	s := newTestScene(t)
	s.Resize(800, 400)
	assert.Equal(t, float32(2), s.Camera().Aspect())

	w, h := s.Renderer().Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 400, h)

	s.Resize(0, 0)
	assert.Equal(t, float32(2), s.Camera().Aspect())
}

func TestSimulationPublishesIntoScene(t *testing.T) {
	s := newTestScene(t)
	sim, err := balls.NewBalls(s, balls.WithCount(5), balls.WithSeed(3))
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count())

	ctx := simulation.NewContext()
	sim.Update(ctx, 0)

	frame := s.BuildFrame()
	require.Len(t, frame.Instances, 5)
	positions := sim.Positions()
	for i, inst := range frame.Instances {
		assert.InDelta(t, positions[i].X, float64(inst.Position[0]), 1e-5)
	}

	require.NoError(t, sim.Reset())
	assert.Equal(t, 5, s.Count(), "reset releases the old population before spawning")
}

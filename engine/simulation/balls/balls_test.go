package balls

import (
	"errors"
	"math"
	"runtime"
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBalls(t *testing.T, options ...BallsBuilderOption) (Balls, *simulation.DetachedSpawner) {
	t.Helper()
	spawner := simulation.NewDetachedSpawner()
	b, err := NewBalls(spawner, options...)
	require.NoError(t, err)
	return b, spawner
}

func step(b Balls, ctx *simulation.Context, n int) {
	for range n {
		b.Update(ctx, 0.016)
	}
}

func TestNoForceAtRestSeparation(t *testing.T) {
	for _, mode := range []Mode{ModeSequential, ModeSnapshot} {
		b, _ := newTestBalls(t,
			WithMode(mode),
			WithPositions([]common.Vec3{{}, {X: 2}, {X: 5}}),
		)
		step(b, simulation.NewContext(), 1)

		for i, v := range b.Velocities() {
			assert.Equal(t, common.Vec3{}, v, "%s: ball %d", mode, i)
		}
		assert.Equal(t, 0, b.Stats().Contacts)
	}
}

func TestForcePointsAwayAndGrowsWithOverlap(t *testing.T) {
	prev := 0.0
	for _, d := range []float64{1.9, 1.5, 1.0, 0.5, 0.1} {
		b, _ := newTestBalls(t, WithPositions([]common.Vec3{{}, {X: d}}))
		step(b, simulation.NewContext(), 1)

		v := b.Velocities()
		assert.Less(t, v[0].X, 0.0, "ball 0 is pushed away from its neighbor at d=%v", d)
		assert.Greater(t, v[1].X, 0.0, "ball 1 is pushed away from its neighbor at d=%v", d)
		assert.Zero(t, v[0].Y)
		assert.Zero(t, v[0].Z)
		assert.InDelta(t, (2-d)*DefaultForceConstant, v[0].Len(), 1e-15)
		assert.Greater(t, v[0].Len(), prev)
		prev = v[0].Len()
	}
}

func TestDampingLaw(t *testing.T) {
	v0 := common.Vec3{X: 1, Y: -0.5}
	b, _ := newTestBalls(t,
		WithPositions([]common.Vec3{{}}),
		WithVelocities([]common.Vec3{v0}),
	)
	ctx := simulation.NewContext()

	for k := 1; k <= 500; k++ {
		b.Update(ctx, 0.016)
		v := b.Velocities()[0]
		want := v0.Len() * math.Pow(DefaultDamping, float64(k))
		assert.InDelta(t, want, v.Len(), want*1e-9)
		assert.Greater(t, v.X, 0.0)
		assert.Less(t, v.Y, 0.0)
	}
	assert.Less(t, b.Velocities()[0].Len(), 1e-4)
}

func TestPositionIntegratesBeforeDamping(t *testing.T) {
	b, spawner := newTestBalls(t,
		WithPositions([]common.Vec3{{X: 10}}),
		WithVelocities([]common.Vec3{{X: 1}}),
	)
	step(b, simulation.NewContext(), 2)

	assert.InDelta(t, 10+1+DefaultDamping, b.Positions()[0].X, 1e-12)
	assert.Equal(t, 1, spawner.Live())
}

func TestEntityMatchesCopies(t *testing.T) {
	b, _ := newTestBalls(t,
		WithPositions([]common.Vec3{{X: 10}, {Y: -4}}),
		WithVelocities([]common.Vec3{{X: 1}, {Z: 2}}),
	)
	step(b, simulation.NewContext(), 3)

	pos, vel := b.Positions(), b.Velocities()
	for i := range 2 {
		p, v, ok := b.Entity(i)
		require.True(t, ok)
		assert.Equal(t, pos[i], p)
		assert.Equal(t, vel[i], v)
	}

	for _, i := range []int{-1, 2} {
		p, v, ok := b.Entity(i)
		assert.False(t, ok)
		assert.Zero(t, p)
		assert.Zero(t, v)
	}
}

func TestZeroDistanceIsSkipped(t *testing.T) {
	for _, mode := range []Mode{ModeSequential, ModeSnapshot} {
		b, _ := newTestBalls(t,
			WithMode(mode),
			WithPositions([]common.Vec3{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}}),
		)
		step(b, simulation.NewContext(), 1)

		for _, v := range b.Velocities() {
			assert.True(t, v.IsFinite())
			assert.Equal(t, common.Vec3{}, v)
		}
		assert.Equal(t, 2, b.Stats().Degenerate)
	}
}

func TestTwoBallsSeparate(t *testing.T) {
	b, spawner := newTestBalls(t,
		WithRadius(1),
		WithDamping(0.98),
		WithForceConstant(0.001),
		WithPositions([]common.Vec3{{}, {X: 1.5}}),
	)
	ctx := simulation.NewContext()

	step(b, ctx, 1)
	v := b.Velocities()
	require.NotZero(t, v[0].Len())
	require.NotZero(t, v[1].Len())
	assert.Equal(t, v[0].Len(), v[1].Len())
	assert.Equal(t, v[0].Scale(-1), v[1])

	p := b.Positions()
	first := p[0].Dist(p[1])

	step(b, ctx, 999)
	p = b.Positions()
	last := p[0].Dist(p[1])
	assert.Greater(t, last, first)
	assert.GreaterOrEqual(t, last, 2.0)

	// the handles follow the simulation
	var xs []float32
	for _, h := range spawnedHandles(t, spawner, b) {
		xs = append(xs, h.Position[0])
	}
	assert.InDelta(t, float32(last), xs[1]-xs[0], 1e-4)
}

func TestPausedContextLeavesStateUnchanged(t *testing.T) {
	b, _ := newTestBalls(t, WithPositions([]common.Vec3{{}, {X: 1}}))
	ctx := simulation.NewContext()
	step(b, ctx, 3)
	pos, vel := b.Positions(), b.Velocities()

	ctx.TogglePause()
	ctx.TogglePause()
	ctx.TogglePause()
	step(b, ctx, 10)

	assert.Equal(t, pos, b.Positions())
	assert.Equal(t, vel, b.Velocities())
}

func TestSnapshotIsOrderIndependent(t *testing.T) {
	layout := []common.Vec3{{}, {X: 1.2}, {X: 2.1, Y: 0.3}, {X: 0.4, Y: 1.5, Z: -0.2}}
	reversed := make([]common.Vec3, len(layout))
	for i, p := range layout {
		reversed[len(layout)-1-i] = p
	}

	forward, _ := newTestBalls(t, WithMode(ModeSnapshot), WithPositions(layout))
	backward, _ := newTestBalls(t, WithMode(ModeSnapshot), WithPositions(reversed))
	ctx := simulation.NewContext()
	step(forward, ctx, 200)
	step(backward, ctx, 200)

	fp, bp := forward.Positions(), backward.Positions()
	for i := range fp {
		j := len(fp) - 1 - i
		assert.InDelta(t, fp[i].X, bp[j].X, 1e-12)
		assert.InDelta(t, fp[i].Y, bp[j].Y, 1e-12)
		assert.InDelta(t, fp[i].Z, bp[j].Z, 1e-12)
	}
}

func TestSequentialDiffersFromSnapshot(t *testing.T) {
	layout := []common.Vec3{{}, {X: 1}, {X: 2}}
	seq, _ := newTestBalls(t, WithMode(ModeSequential), WithPositions(layout))
	snap, _ := newTestBalls(t, WithMode(ModeSnapshot), WithPositions(layout))
	ctx := simulation.NewContext()

	step(seq, ctx, 1)
	step(snap, ctx, 1)
	assert.Equal(t, seq.Velocities(), snap.Velocities(), "identical while nothing has moved yet")

	step(seq, ctx, 1)
	step(snap, ctx, 1)
	assert.NotEqual(t, seq.Velocities(), snap.Velocities())
}

func TestParallelScanMatchesSerial(t *testing.T) {
	serial, _ := newTestBalls(t, WithMode(ModeSnapshot), WithCount(120), WithSeed(3))
	parallel, _ := newTestBalls(t, WithMode(ModeSnapshot), WithCount(120), WithSeed(3),
		WithWorkers(4), WithParallelThreshold(0))
	ctx := simulation.NewContext()

	step(serial, ctx, 25)
	step(parallel, ctx, 25)

	assert.Equal(t, serial.Positions(), parallel.Positions())
	assert.Equal(t, serial.Velocities(), parallel.Velocities())
	assert.Equal(t, serial.Stats(), parallel.Stats())
}

func TestRepeatedPopulationsShareWorkers(t *testing.T) {
	options := []BallsBuilderOption{WithMode(ModeSnapshot), WithCount(40), WithWorkers(6), WithParallelThreshold(0)}
	ctx := simulation.NewContext()

	warm, _ := newTestBalls(t, options...)
	step(warm, ctx, 1)
	before := runtime.NumGoroutine()

	for range 30 {
		b, _ := newTestBalls(t, options...)
		step(b, ctx, 2)
		require.NoError(t, b.Reset())
		step(b, ctx, 1)
	}

	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2)
}

func TestGridMatchesFullScan(t *testing.T) {
	full, _ := newTestBalls(t, WithMode(ModeSnapshot), WithCount(150), WithSpread(10), WithSeed(9))
	grid, _ := newTestBalls(t, WithMode(ModeSnapshot), WithCount(150), WithSpread(10), WithSeed(9),
		WithCellSize(2*DefaultRadius))
	ctx := simulation.NewContext()

	for range 40 {
		full.Update(ctx, 0)
		grid.Update(ctx, 0)
		assert.Equal(t, full.Stats().Contacts, grid.Stats().Contacts)
		assert.LessOrEqual(t, grid.Stats().Pairs, full.Stats().Pairs)
	}
	assert.Equal(t, full.Positions(), grid.Positions())
	assert.Equal(t, full.Velocities(), grid.Velocities())
}

func TestResetRecreatesPopulation(t *testing.T) {
	b, spawner := newTestBalls(t, WithCount(8), WithSeed(5))
	initial := b.Positions()
	step(b, simulation.NewContext(), 100)
	require.NotEqual(t, initial, b.Positions())

	require.NoError(t, b.Reset())

	assert.Equal(t, initial, b.Positions())
	for _, v := range b.Velocities() {
		assert.Equal(t, common.Vec3{}, v)
	}
	assert.Equal(t, 8, spawner.Live())
	spawned, released := spawner.Counts()
	assert.Equal(t, 16, spawned)
	assert.Equal(t, 8, released)
	assert.Equal(t, Stats{}, b.Stats())
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		options []BallsBuilderOption
	}{
		{"negative count", []BallsBuilderOption{WithCount(-1)}},
		{"zero radius", []BallsBuilderOption{WithRadius(0)}},
		{"negative radius", []BallsBuilderOption{WithRadius(-2)}},
		{"damping one", []BallsBuilderOption{WithDamping(1)}},
		{"damping zero", []BallsBuilderOption{WithDamping(0)}},
		{"zero force", []BallsBuilderOption{WithForceConstant(0)}},
		{"negative spread", []BallsBuilderOption{WithSpread(-1)}},
		{"unknown mode", []BallsBuilderOption{WithMode("jacobi")}},
		{"no workers", []BallsBuilderOption{WithWorkers(0)}},
		{"grid in sequential mode", []BallsBuilderOption{WithCellSize(4)}},
		{"grid cell too small", []BallsBuilderOption{WithMode(ModeSnapshot), WithCellSize(1)}},
		{"count and layout disagree", []BallsBuilderOption{WithCount(3), WithPositions([]common.Vec3{{}})}},
		{"velocity count", []BallsBuilderOption{WithCount(2), WithVelocities([]common.Vec3{{}})}},
		{"nan spread", []BallsBuilderOption{WithSpread(math.NaN())}},
		{"infinite spread", []BallsBuilderOption{WithSpread(math.Inf(1))}},
		{"nan radius", []BallsBuilderOption{WithRadius(math.NaN())}},
		{"infinite radius", []BallsBuilderOption{WithRadius(math.Inf(1))}},
		{"infinite force", []BallsBuilderOption{WithForceConstant(math.Inf(1))}},
		{"nan damping", []BallsBuilderOption{WithDamping(math.NaN())}},
		{"nan cell size", []BallsBuilderOption{WithMode(ModeSnapshot), WithCellSize(math.NaN())}},
		{"nan position", []BallsBuilderOption{WithPositions([]common.Vec3{{}, {X: math.NaN()}})}},
		{"infinite position", []BallsBuilderOption{WithPositions([]common.Vec3{{Y: math.Inf(-1)}})}},
		{"infinite velocity", []BallsBuilderOption{WithCount(2), WithVelocities([]common.Vec3{{}, {Z: math.Inf(1)}})}},
		{"nan velocity", []BallsBuilderOption{WithCount(1), WithVelocities([]common.Vec3{{X: math.NaN()}})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBalls(simulation.NewDetachedSpawner(), tt.options...)
			assert.True(t, errors.Is(err, simulation.ErrConfiguration), "got %v", err)
		})
	}

	_, err := NewBalls(nil)
	assert.ErrorIs(t, err, simulation.ErrConfiguration)
}

func TestEmptyPopulation(t *testing.T) {
	b, spawner := newTestBalls(t, WithCount(0))
	step(b, simulation.NewContext(), 5)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, spawner.Live())
}

// spawnedHandles returns the detached handles of b in population order by
// matching their published positions.
func spawnedHandles(t *testing.T, spawner *simulation.DetachedSpawner, b Balls) []*simulation.DetachedHandle {
	t.Helper()
	impl, ok := b.(*balls)
	require.True(t, ok)
	out := make([]*simulation.DetachedHandle, 0, len(impl.handles))
	for _, h := range impl.handles {
		dh, ok := h.(*simulation.DetachedHandle)
		require.True(t, ok)
		out = append(out, dh)
	}
	require.Equal(t, spawner.Live(), len(out))
	return out
}

package balls

import "github.com/Carmen-Shannon/oxy-demos/common"

// BallsBuilderOption is a functional option for configuring a ball population.
type BallsBuilderOption func(*balls)

// WithCount sets the population size. Ignored in favor of the layout length when
// WithPositions is also given, unless the two disagree, which is an error.
//
// Parameters:
//   - n: the number of balls
//
// Returns:
//   - BallsBuilderOption: the option
func WithCount(n int) BallsBuilderOption {
	return func(b *balls) {
		b.count = n
		b.countSet = true
	}
}

// WithRadius sets the ball radius; two balls interact while closer than twice this value.
func WithRadius(r float64) BallsBuilderOption {
	return func(b *balls) {
		b.radius = r
	}
}

// WithDamping sets the per-tick velocity multiplier, which must lie in (0, 1).
func WithDamping(d float64) BallsBuilderOption {
	return func(b *balls) {
		b.damping = d
	}
}

// WithForceConstant sets the impulse added per unit of overlap depth.
func WithForceConstant(k float64) BallsBuilderOption {
	return func(b *balls) {
		b.forceConstant = k
	}
}

// WithSpread sets the side length of the cube the random initial layout is drawn from.
func WithSpread(s float64) BallsBuilderOption {
	return func(b *balls) {
		b.spread = s
	}
}

// WithPositions sets an explicit initial layout. The slice is copied.
//
// Parameters:
//   - positions: one position per ball
//
// Returns:
//   - BallsBuilderOption: the option
func WithPositions(positions []common.Vec3) BallsBuilderOption {
	return func(b *balls) {
		b.layout = append([]common.Vec3{}, positions...)
	}
}

// WithVelocities sets explicit initial velocities, one per ball. Velocities are
// zero otherwise.
func WithVelocities(velocities []common.Vec3) BallsBuilderOption {
	return func(b *balls) {
		b.initialVelocities = append([]common.Vec3{}, velocities...)
	}
}

// WithMode selects sequential or snapshot updates.
func WithMode(m Mode) BallsBuilderOption {
	return func(b *balls) {
		b.mode = m
	}
}

// WithWorkers sets the number of pool workers used by the snapshot scan. Values
// above 1 only take effect in snapshot mode.
func WithWorkers(n int) BallsBuilderOption {
	return func(b *balls) {
		b.workers = n
	}
}

// WithParallelThreshold sets the population size from which the snapshot scan
// runs on the worker pool.
func WithParallelThreshold(n int) BallsBuilderOption {
	return func(b *balls) {
		b.parallelThreshold = n
	}
}

// WithCellSize replaces the full neighbor scan with a uniform grid of the given
// cell size. Zero keeps the full scan.
func WithCellSize(size float64) BallsBuilderOption {
	return func(b *balls) {
		b.cellSize = size
	}
}

// WithSeed sets the seed of the random layout and colors.
func WithSeed(seed uint64) BallsBuilderOption {
	return func(b *balls) {
		b.seed = seed
	}
}

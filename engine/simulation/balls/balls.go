// Package balls implements the coupled simulation regime: a fixed population of
// soft spheres that push each other apart when they overlap.
package balls

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/Carmen-Shannon/oxy-demos/engine/spatial"
	"github.com/Carmen-Shannon/oxy-demos/engine/workers"
	"github.com/lucasb-eyer/go-colorful"
)

// Mode selects how neighbor positions are observed within one tick.
type Mode string

const (
	// ModeSequential updates entities one at a time in population order. Later
	// entities see earlier entities' already updated positions (sequential relaxation).
	ModeSequential Mode = "sequential"
	// ModeSnapshot integrates every entity first and then accumulates forces
	// from the frozen positions, so the result does not depend on order.
	ModeSnapshot Mode = "snapshot"
)

const (
	DefaultCount         = 24
	DefaultRadius        = 1.0
	DefaultDamping       = 0.98
	DefaultForceConstant = 0.001
	DefaultSpread        = 6.0
)

// Stats describes the neighbor scan of the most recent tick.
type Stats struct {
	// Pairs is the number of ordered pairs whose distance was measured.
	Pairs int
	// Contacts is the number of ordered pairs closer than two radii.
	Contacts int
	// Degenerate is the number of ordered pairs at exactly zero distance; they
	// contribute no force.
	Degenerate int
}

func (s *Stats) add(o Stats) {
	s.Pairs += o.Pairs
	s.Contacts += o.Contacts
	s.Degenerate += o.Degenerate
}

// Balls is the ball population.
type Balls interface {
	simulation.Simulation

	// Positions returns a copy of the current positions, by population index.
	Positions() []common.Vec3

	// Velocities returns a copy of the current velocities, by population index.
	Velocities() []common.Vec3

	// Entity returns the state of a single ball.
	//
	// Parameters:
	//   - i: the population index
	//
	// Returns:
	//   - common.Vec3: the ball's position
	//   - common.Vec3: the ball's velocity
	//   - bool: false when i is outside the population
	Entity(i int) (common.Vec3, common.Vec3, bool)

	// Stats returns the neighbor scan counters of the last tick.
	Stats() Stats

	// Mode returns the configured update mode.
	Mode() Mode
}

type balls struct {
	spawner simulation.Spawner

	count             int
	countSet          bool
	radius            float64
	damping           float64
	forceConstant     float64
	spread            float64
	layout            []common.Vec3
	initialVelocities []common.Vec3
	mode              Mode
	workers           int
	parallelThreshold int
	cellSize          float64
	seed              uint64

	pos     []common.Vec3
	vel     []common.Vec3
	force   []common.Vec3
	handles []simulation.Handle
	grid    *spatial.Grid
	pool    worker.DynamicWorkerPool
	stats   Stats
}

var _ Balls = &balls{}

// NewBalls creates a ball population and spawns one handle per ball.
//
// Parameters:
//   - spawner: the scene (or detached spawner) that owns the handles
//   - options: builder options
//
// Returns:
//   - Balls: the population
//   - error: an error wrapping simulation.ErrConfiguration if the options are invalid
func NewBalls(spawner simulation.Spawner, options ...BallsBuilderOption) (Balls, error) {
	b := &balls{
		spawner:           spawner,
		count:             DefaultCount,
		radius:            DefaultRadius,
		damping:           DefaultDamping,
		forceConstant:     DefaultForceConstant,
		spread:            DefaultSpread,
		mode:              ModeSequential,
		workers:           1,
		parallelThreshold: 256,
		seed:              1,
	}

	for _, option := range options {
		option(b)
	}

	if err := b.validate(); err != nil {
		return nil, err
	}

	if b.cellSize > 0 {
		grid, err := spatial.NewGrid(b.cellSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", simulation.ErrConfiguration, err)
		}
		b.grid = grid
	}

	b.populate()
	return b, nil
}

func (b *balls) validate() error {
	if b.spawner == nil {
		return fmt.Errorf("%w: balls need a spawner", simulation.ErrConfiguration)
	}
	if b.layout != nil {
		if b.countSet && b.count != len(b.layout) {
			return fmt.Errorf("%w: ball count %d does not match %d positions", simulation.ErrConfiguration, b.count, len(b.layout))
		}
		b.count = len(b.layout)
	}
	if b.count < 0 {
		return fmt.Errorf("%w: ball count %d is negative", simulation.ErrConfiguration, b.count)
	}
	if !(b.radius > 0) || math.IsInf(b.radius, 0) {
		return fmt.Errorf("%w: ball radius %v must be positive and finite", simulation.ErrConfiguration, b.radius)
	}
	if !(b.damping > 0 && b.damping < 1) {
		return fmt.Errorf("%w: damping %v must be in (0, 1)", simulation.ErrConfiguration, b.damping)
	}
	if !(b.forceConstant > 0) || math.IsInf(b.forceConstant, 0) {
		return fmt.Errorf("%w: force constant %v must be positive and finite", simulation.ErrConfiguration, b.forceConstant)
	}
	if !(b.spread >= 0) || math.IsInf(b.spread, 0) {
		return fmt.Errorf("%w: spread %v must be non-negative and finite", simulation.ErrConfiguration, b.spread)
	}
	for i, p := range b.layout {
		if !p.IsFinite() {
			return fmt.Errorf("%w: position %d is not finite", simulation.ErrConfiguration, i)
		}
	}
	if b.initialVelocities != nil && len(b.initialVelocities) != b.count {
		return fmt.Errorf("%w: %d initial velocities for %d balls", simulation.ErrConfiguration, len(b.initialVelocities), b.count)
	}
	for i, v := range b.initialVelocities {
		if !v.IsFinite() {
			return fmt.Errorf("%w: velocity %d is not finite", simulation.ErrConfiguration, i)
		}
	}
	if b.mode != ModeSequential && b.mode != ModeSnapshot {
		return fmt.Errorf("%w: unknown update mode %q", simulation.ErrConfiguration, b.mode)
	}
	if b.workers < 1 {
		return fmt.Errorf("%w: workers %d must be at least 1", simulation.ErrConfiguration, b.workers)
	}
	if b.parallelThreshold < 0 {
		return fmt.Errorf("%w: parallel threshold %d is negative", simulation.ErrConfiguration, b.parallelThreshold)
	}
	if !(b.cellSize >= 0) || math.IsInf(b.cellSize, 0) {
		return fmt.Errorf("%w: cell size %v must be non-negative and finite", simulation.ErrConfiguration, b.cellSize)
	}
	if b.cellSize > 0 {
		if b.mode != ModeSnapshot {
			return fmt.Errorf("%w: a spatial grid requires %s mode", simulation.ErrConfiguration, ModeSnapshot)
		}
		if b.cellSize < 2*b.radius {
			return fmt.Errorf("%w: cell size %v is smaller than the contact distance %v", simulation.ErrConfiguration, b.cellSize, 2*b.radius)
		}
	}
	return nil
}

// populate builds the initial population from the configuration. It is used
// both at construction and on reset, so the same seed always yields the same
// starting layout.
func (b *balls) populate() {
	rng := rand.New(rand.NewPCG(b.seed, b.seed^0x9e3779b97f4a7c15))

	b.pos = make([]common.Vec3, b.count)
	b.vel = make([]common.Vec3, b.count)
	b.force = make([]common.Vec3, b.count)
	b.handles = make([]simulation.Handle, b.count)
	b.stats = Stats{}

	for i := range b.count {
		if b.layout != nil {
			b.pos[i] = b.layout[i]
		} else {
			b.pos[i] = common.Vec3{
				X: (rng.Float64() - 0.5) * b.spread,
				Y: (rng.Float64() - 0.5) * b.spread,
				Z: (rng.Float64() - 0.5) * b.spread,
			}
		}
		if b.initialVelocities != nil {
			b.vel[i] = b.initialVelocities[i]
		}

		c := colorful.Hsl(rng.Float64()*360, 0.65, 0.55)
		h := b.spawner.Spawn(simulation.SpawnSpec{
			Name:  "ball",
			Color: [4]float32{float32(c.R), float32(c.G), float32(c.B), 1},
			Scale: float32(b.radius),
		})
		p := b.pos[i].Float32()
		h.SetPosition(p[0], p[1], p[2])
		b.handles[i] = h
	}
}

func (b *balls) Name() string {
	return "balls"
}

func (b *balls) Len() int {
	return len(b.pos)
}

func (b *balls) Mode() Mode {
	return b.mode
}

// Update advances every ball by one tick. The step is tick-coupled: dt is
// ignored and one unit of velocity is applied per call.
func (b *balls) Update(ctx *simulation.Context, dt float32) {
	if ctx != nil && ctx.Paused() {
		return
	}

	switch b.mode {
	case ModeSnapshot:
		b.updateSnapshot()
	default:
		b.updateSequential()
	}

	for i, h := range b.handles {
		p := b.pos[i].Float32()
		h.SetPosition(p[0], p[1], p[2])
	}
}

func (b *balls) updateSequential() {
	b.stats = Stats{}
	for i := range b.pos {
		b.pos[i] = b.pos[i].Add(b.vel[i])
		b.vel[i] = b.vel[i].Scale(b.damping)

		f, s := b.forceOn(i, nil)
		b.vel[i] = b.vel[i].Add(f)
		b.stats.add(s)
	}
}

func (b *balls) updateSnapshot() {
	for i := range b.pos {
		b.pos[i] = b.pos[i].Add(b.vel[i])
		b.vel[i] = b.vel[i].Scale(b.damping)
	}

	if b.grid != nil {
		b.grid.Build(b.pos)
	}

	// positions are read-only until every force is known
	if b.mode == ModeSnapshot && b.workers > 1 && len(b.pos) >= b.parallelThreshold {
		b.stats = b.scanParallel()
	} else {
		b.stats = b.scanRange(0, len(b.pos), nil)
	}

	for i := range b.vel {
		b.vel[i] = b.vel[i].Add(b.force[i])
	}
}

// scanRange fills b.force for entities [from, to).
func (b *balls) scanRange(from, to int, scratch []int) Stats {
	var total Stats
	for i := from; i < to; i++ {
		f, s := b.forceOn(i, scratch)
		b.force[i] = f
		total.add(s)
	}
	return total
}

// scanParallel splits the force scan into contiguous chunks on the worker pool
// and waits for all of them before returning. Each chunk writes a disjoint
// range of b.force.
func (b *balls) scanParallel() Stats {
	if b.pool == nil {
		b.pool = workers.Shared(b.workers)
	}
	chunks := min(b.workers, workers.QueueSize, len(b.pos))
	size := (len(b.pos) + chunks - 1) / chunks
	results := make([]Stats, chunks)

	var wg sync.WaitGroup
	for c := range chunks {
		from := c * size
		to := min(from+size, len(b.pos))
		if from >= to {
			continue
		}
		wg.Add(1)
		id := c
		b.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				results[id] = b.scanRange(from, to, make([]int, 0, 32))
				return nil, nil
			},
		})
	}
	wg.Wait()

	var total Stats
	for _, s := range results {
		total.add(s)
	}
	return total
}

// forceOn sums the repulsion impulse on entity i from every overlapping
// neighbor, reading the current contents of b.pos.
func (b *balls) forceOn(i int, scratch []int) (common.Vec3, Stats) {
	var (
		f     common.Vec3
		s     Stats
		self  = b.pos[i]
		reach = 2 * b.radius
	)

	pair := func(j int) {
		s.Pairs++
		diff := self.Sub(b.pos[j])
		d := diff.Len()
		if d == 0 {
			s.Degenerate++
			return
		}
		if d >= reach {
			return
		}
		s.Contacts++
		f = f.Add(diff.Scale((reach - d) * b.forceConstant / d))
	}

	if b.grid != nil {
		for _, j := range b.grid.Candidates(scratch[:0], i) {
			pair(j)
		}
		return f, s
	}

	for j := range b.pos {
		if j != i {
			pair(j)
		}
	}
	return f, s
}

func (b *balls) Reset() error {
	for _, h := range b.handles {
		b.spawner.Release(h)
	}
	b.populate()
	return nil
}

func (b *balls) Positions() []common.Vec3 {
	return append([]common.Vec3(nil), b.pos...)
}

func (b *balls) Velocities() []common.Vec3 {
	return append([]common.Vec3(nil), b.vel...)
}

func (b *balls) Entity(i int) (common.Vec3, common.Vec3, bool) {
	if i < 0 || i >= len(b.pos) {
		return common.Vec3{}, common.Vec3{}, false
	}
	return b.pos[i], b.vel[i], true
}

func (b *balls) Stats() Stats {
	return b.stats
}

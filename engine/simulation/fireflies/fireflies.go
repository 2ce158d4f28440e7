// Package fireflies implements the decoupled simulation regime: every firefly
// circles its own pivot and never looks at the others.
package fireflies

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultCount       = 30
	DefaultRateMin     = 0.001
	DefaultRateMax     = 0.003
	DefaultOrbitRadius = 2.5

	// greenChance is the share of fireflies drawn in the accent hue.
	greenChance = 0.05
)

// Fireflies is the firefly population.
type Fireflies interface {
	simulation.Simulation

	// Rotations returns each pivot's current Euler rotation in radians.
	Rotations() []common.Vec3

	// InitialRotations returns each pivot's rotation at tick zero.
	InitialRotations() []common.Vec3

	// Rates returns each pivot's per-tick rotation increment, applied to all three axes.
	Rates() []float64

	// Positions returns each firefly's world position on its orbit.
	Positions() []common.Vec3

	// Ticks returns the number of updates since creation or the last reset.
	Ticks() uint64
}

type firefly struct {
	initial common.Vec3
	rate    float64
	handle  simulation.Handle
}

type fireflies struct {
	spawner simulation.Spawner

	count       int
	rateMin     float64
	rateMax     float64
	orbitRadius float64
	seed        uint64

	flies []firefly
	ticks uint64
}

var _ Fireflies = &fireflies{}

// NewFireflies creates a firefly population and spawns one handle per firefly.
//
// Parameters:
//   - spawner: the scene (or detached spawner) that owns the handles
//   - options: builder options
//
// Returns:
//   - Fireflies: the population
//   - error: an error wrapping simulation.ErrConfiguration if the options are invalid
func NewFireflies(spawner simulation.Spawner, options ...FirefliesBuilderOption) (Fireflies, error) {
	f := &fireflies{
		spawner:     spawner,
		count:       DefaultCount,
		rateMin:     DefaultRateMin,
		rateMax:     DefaultRateMax,
		orbitRadius: DefaultOrbitRadius,
		seed:        1,
	}

	for _, option := range options {
		option(f)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	f.populate()
	return f, nil
}

func (f *fireflies) validate() error {
	if f.spawner == nil {
		return fmt.Errorf("%w: fireflies need a spawner", simulation.ErrConfiguration)
	}
	if f.count < 0 {
		return fmt.Errorf("%w: firefly count %d is negative", simulation.ErrConfiguration, f.count)
	}
	if !(f.rateMin >= 0) || math.IsInf(f.rateMax, 0) || !(f.rateMax >= f.rateMin) {
		return fmt.Errorf("%w: rate range [%v, %v] is invalid", simulation.ErrConfiguration, f.rateMin, f.rateMax)
	}
	if !(f.orbitRadius > 0) || math.IsInf(f.orbitRadius, 0) {
		return fmt.Errorf("%w: orbit radius %v must be positive and finite", simulation.ErrConfiguration, f.orbitRadius)
	}
	return nil
}

func (f *fireflies) populate() {
	rng := rand.New(rand.NewPCG(f.seed, f.seed^0x2545f4914f6cdd1d))

	f.ticks = 0
	f.flies = make([]firefly, f.count)
	for i := range f.flies {
		hue := 0.6 + rng.Float64()*0.2
		if rng.Float64() < greenChance {
			hue = 0.25
		}
		c := colorful.Hsl(hue*360, 1, 0.5)

		f.flies[i] = firefly{
			initial: common.Vec3{Z: rng.Float64() * 2 * math.Pi},
			rate:    f.rateMin + rng.Float64()*(f.rateMax-f.rateMin),
			handle: f.spawner.Spawn(simulation.SpawnSpec{
				Name:  "firefly",
				Color: [4]float32{float32(c.R), float32(c.G), float32(c.B), 1},
				Scale: 0.1,
			}),
		}
		f.publish(i)
	}
}

func (f *fireflies) rotation(i int) common.Vec3 {
	fl := f.flies[i]
	step := fl.rate * float64(f.ticks)
	return common.Vec3{X: fl.initial.X + step, Y: fl.initial.Y + step, Z: fl.initial.Z + step}
}

func (f *fireflies) position(i int) common.Vec3 {
	r := f.rotation(i)
	return common.RotateXYZ(common.Vec3{X: f.orbitRadius}, r.X, r.Y, r.Z)
}

func (f *fireflies) publish(i int) {
	r := f.rotation(i).Float32()
	p := f.position(i).Float32()
	h := f.flies[i].handle
	h.SetRotation(r[0], r[1], r[2])
	h.SetPosition(p[0], p[1], p[2])
}

func (f *fireflies) Name() string {
	return "fireflies"
}

func (f *fireflies) Len() int {
	return len(f.flies)
}

// Update turns every pivot by its rate on all three axes. The rotation is
// derived from the tick count rather than accumulated, so it carries no
// rounding drift.
func (f *fireflies) Update(ctx *simulation.Context, dt float32) {
	if ctx != nil && ctx.Paused() {
		return
	}
	f.ticks++
	for i := range f.flies {
		f.publish(i)
	}
}

func (f *fireflies) Reset() error {
	for _, fl := range f.flies {
		f.spawner.Release(fl.handle)
	}
	f.populate()
	return nil
}

func (f *fireflies) Rotations() []common.Vec3 {
	out := make([]common.Vec3, len(f.flies))
	for i := range f.flies {
		out[i] = f.rotation(i)
	}
	return out
}

func (f *fireflies) InitialRotations() []common.Vec3 {
	out := make([]common.Vec3, len(f.flies))
	for i, fl := range f.flies {
		out[i] = fl.initial
	}
	return out
}

func (f *fireflies) Rates() []float64 {
	out := make([]float64, len(f.flies))
	for i, fl := range f.flies {
		out[i] = fl.rate
	}
	return out
}

func (f *fireflies) Positions() []common.Vec3 {
	out := make([]common.Vec3, len(f.flies))
	for i := range f.flies {
		out[i] = f.position(i)
	}
	return out
}

func (f *fireflies) Ticks() uint64 {
	return f.ticks
}

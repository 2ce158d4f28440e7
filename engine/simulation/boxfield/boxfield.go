// Package boxfield implements a rotating field of boxes scattered in a
// spherical shell. Each box spins on its own and the whole field turns slowly.
package boxfield

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultCount      = 1000
	DefaultRadius     = 45.0
	DefaultSpeedMin   = 0.001
	DefaultSpeedMax   = 0.004
	DefaultGroupRateX = 0.0004
	DefaultGroupRateY = 0.0006
	DefaultBoxSize    = 0.5
)

// BoxField is the box population.
type BoxField interface {
	simulation.Simulation

	// LocalPositions returns each box's position inside the field.
	LocalPositions() []common.Vec3

	// Positions returns each box's world position after the field rotation.
	Positions() []common.Vec3

	// Rotations returns each box's own Euler rotation.
	Rotations() []common.Vec3

	// GroupRotation returns the rotation of the whole field.
	GroupRotation() common.Vec3
}

type box struct {
	local   common.Vec3
	initial common.Vec3
	speed   float64
	handle  simulation.Handle
}

type boxField struct {
	spawner simulation.Spawner

	count      int
	radius     float64
	speedMin   float64
	speedMax   float64
	groupRateX float64
	groupRateY float64
	boxSize    float64
	seed       uint64

	boxes []box
	ticks uint64
}

var _ BoxField = &boxField{}

// NewBoxField creates a box field and spawns one handle per box.
//
// Parameters:
//   - spawner: the scene (or detached spawner) that owns the handles
//   - options: builder options
//
// Returns:
//   - BoxField: the population
//   - error: an error wrapping simulation.ErrConfiguration if the options are invalid
func NewBoxField(spawner simulation.Spawner, options ...BoxFieldBuilderOption) (BoxField, error) {
	f := &boxField{
		spawner:    spawner,
		count:      DefaultCount,
		radius:     DefaultRadius,
		speedMin:   DefaultSpeedMin,
		speedMax:   DefaultSpeedMax,
		groupRateX: DefaultGroupRateX,
		groupRateY: DefaultGroupRateY,
		boxSize:    DefaultBoxSize,
		seed:       1,
	}

	for _, option := range options {
		option(f)
	}

	if f.spawner == nil {
		return nil, fmt.Errorf("%w: box field needs a spawner", simulation.ErrConfiguration)
	}
	if f.count < 0 {
		return nil, fmt.Errorf("%w: box count %d is negative", simulation.ErrConfiguration, f.count)
	}
	if !(f.radius > 0) || math.IsInf(f.radius, 0) {
		return nil, fmt.Errorf("%w: field radius %v must be positive", simulation.ErrConfiguration, f.radius)
	}
	if !(f.speedMin >= 0) || math.IsInf(f.speedMax, 0) || !(f.speedMax >= f.speedMin) {
		return nil, fmt.Errorf("%w: speed range [%v, %v] is invalid", simulation.ErrConfiguration, f.speedMin, f.speedMax)
	}
	if math.IsNaN(f.groupRateX) || math.IsInf(f.groupRateX, 0) || math.IsNaN(f.groupRateY) || math.IsInf(f.groupRateY, 0) {
		return nil, fmt.Errorf("%w: group rate (%v, %v) is not finite", simulation.ErrConfiguration, f.groupRateX, f.groupRateY)
	}
	if !(f.boxSize > 0) || math.IsInf(f.boxSize, 0) {
		return nil, fmt.Errorf("%w: box size %v must be positive and finite", simulation.ErrConfiguration, f.boxSize)
	}

	f.populate()
	return f, nil
}

func (f *boxField) populate() {
	rng := rand.New(rand.NewPCG(f.seed, f.seed^0x5851f42d4c957f2d))

	f.ticks = 0
	f.boxes = make([]box, f.count)
	for i := range f.boxes {
		c := colorful.Hsl(rng.Float64()*360, 0.8, 0.6)
		f.boxes[i] = box{
			local:   common.RandomShellPoint(rng, f.radius),
			initial: common.Vec3{X: rng.Float64() * math.Pi, Y: rng.Float64() * math.Pi},
			speed:   f.speedMin + rng.Float64()*(f.speedMax-f.speedMin),
			handle: f.spawner.Spawn(simulation.SpawnSpec{
				Name:  "box",
				Color: [4]float32{float32(c.R), float32(c.G), float32(c.B), 1},
				Scale: float32(f.boxSize),
			}),
		}
		f.publish(i)
	}
}

func (f *boxField) GroupRotation() common.Vec3 {
	t := float64(f.ticks)
	return common.Vec3{X: f.groupRateX * t, Y: f.groupRateY * t}
}

func (f *boxField) rotation(i int) common.Vec3 {
	b := f.boxes[i]
	step := b.speed * float64(f.ticks)
	return common.Vec3{X: b.initial.X + step, Y: b.initial.Y + step, Z: b.initial.Z}
}

func (f *boxField) position(i int, group common.Vec3) common.Vec3 {
	return common.RotateXYZ(f.boxes[i].local, group.X, group.Y, group.Z)
}

func (f *boxField) publish(i int) {
	p := f.position(i, f.GroupRotation()).Float32()
	r := f.rotation(i).Float32()
	h := f.boxes[i].handle
	h.SetPosition(p[0], p[1], p[2])
	h.SetRotation(r[0], r[1], r[2])
}

func (f *boxField) Name() string {
	return "boxfield"
}

func (f *boxField) Len() int {
	return len(f.boxes)
}

func (f *boxField) Update(ctx *simulation.Context, dt float32) {
	if ctx != nil && ctx.Paused() {
		return
	}
	f.ticks++
	for i := range f.boxes {
		f.publish(i)
	}
}

func (f *boxField) Reset() error {
	for _, b := range f.boxes {
		f.spawner.Release(b.handle)
	}
	f.populate()
	return nil
}

func (f *boxField) LocalPositions() []common.Vec3 {
	out := make([]common.Vec3, len(f.boxes))
	for i, b := range f.boxes {
		out[i] = b.local
	}
	return out
}

func (f *boxField) Positions() []common.Vec3 {
	group := f.GroupRotation()
	out := make([]common.Vec3, len(f.boxes))
	for i := range f.boxes {
		out[i] = f.position(i, group)
	}
	return out
}

func (f *boxField) Rotations() []common.Vec3 {
	out := make([]common.Vec3, len(f.boxes))
	for i := range f.boxes {
		out[i] = f.rotation(i)
	}
	return out
}

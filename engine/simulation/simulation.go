// Package simulation defines the protocol shared by every per-frame simulation:
// the Simulation interface driven by the scheduler, the explicit Context that
// carries clock and pause state, and the Handle/Spawner contract used to publish
// entity transforms to the scene graph.
package simulation

import "errors"

// ErrConfiguration is returned when a simulation is created with invalid
// parameters (negative population, non-positive radius, damping outside (0,1), ...).
// Invalid values are never clamped.
var ErrConfiguration = errors.New("invalid simulation configuration")

// Simulation advances a fixed population of entities by one discrete step per
// scheduler tick.
type Simulation interface {
	// Name returns a short identifier used in logs.
	Name() string

	// Len returns the population size. It never changes between resets.
	Len() int

	// Update advances every entity by one tick. The scheduler never calls it
	// while ctx is paused and calls it at most once per tick.
	//
	// Parameters:
	//   - ctx: the simulation context owned by the scheduler
	//   - dt: seconds since the previous tick (0 on the first tick)
	Update(ctx *Context, dt float32)

	// Reset releases the current population's handles and recreates it from the
	// initial configuration.
	//
	// Returns:
	//   - error: error if the population could not be recreated
	Reset() error
}

// Handle is the scene-graph side of an entity. The simulation writes to it every
// tick it runs but never reads scene state back and never owns its lifetime.
type Handle interface {
	// SetPosition sets the world-space position.
	SetPosition(x, y, z float32)

	// SetRotation sets the Euler rotation in radians.
	SetRotation(rx, ry, rz float32)
}

// SpawnSpec describes the visual a simulation wants for a new entity.
type SpawnSpec struct {
	// Name is a debug label, e.g. "ball".
	Name string
	// Color is linear RGBA in [0, 1].
	Color [4]float32
	// Scale is the uniform visual size (sphere radius, box half-extent, ...).
	Scale float32
}

// Spawner creates and releases Handles. The scene implements it; tests and
// headless runs use a DetachedSpawner.
type Spawner interface {
	// Spawn creates a new handle.
	//
	// Parameters:
	//   - spec: the visual description of the entity
	//
	// Returns:
	//   - Handle: the new handle
	Spawn(spec SpawnSpec) Handle

	// Release detaches a handle previously returned by Spawn.
	//
	// Parameters:
	//   - h: the handle to release
	Release(h Handle)
}

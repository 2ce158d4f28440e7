package simulation

import "time"

// Context holds the clock and pause state of one simulation run. The scheduler
// owns it and passes it into every Update; tests construct their own.
// Context is not safe for concurrent use; it is only touched from the loop goroutine.
type Context struct {
	lastTick time.Time
	started  bool
	elapsed  float64

	state  State
	ticks  uint64
	frames uint64
}

// NewContext creates a running context whose clock has not started yet.
func NewContext() *Context {
	return &Context{state: StateRunning}
}

// Advance moves the clock to now and returns the frame delta in seconds. The
// first call returns 0; a clock that moves backwards yields 0 rather than a
// negative delta.
//
// Parameters:
//   - now: the current time
//
// Returns:
//   - float32: seconds since the previous call, clamped to be non-negative
func (c *Context) Advance(now time.Time) float32 {
	c.frames++
	if !c.started {
		c.started = true
		c.lastTick = now
		return 0
	}
	dt := now.Sub(c.lastTick).Seconds()
	c.lastTick = now
	if dt < 0 {
		dt = 0
	}
	c.elapsed += dt
	return float32(dt)
}

// MarkTick records that the simulation ran for the current frame.
func (c *Context) MarkTick() {
	c.ticks++
}

// Elapsed returns the seconds accumulated by Advance since start or the last reset.
func (c *Context) Elapsed() float64 {
	return c.elapsed
}

// LastTick returns the time passed to the most recent Advance.
func (c *Context) LastTick() time.Time {
	return c.lastTick
}

// Ticks returns the number of simulated (non-paused) ticks.
func (c *Context) Ticks() uint64 {
	return c.ticks
}

// Frames returns the number of frames the clock has advanced through,
// including paused ones.
func (c *Context) Frames() uint64 {
	return c.frames
}

// State returns the current run state.
func (c *Context) State() State {
	return c.state
}

// Paused reports whether updates are currently skipped.
func (c *Context) Paused() bool {
	return c.state == StatePaused
}

// SetPaused sets the run state explicitly.
func (c *Context) SetPaused(paused bool) {
	if paused {
		c.state = StatePaused
		return
	}
	c.state = StateRunning
}

// TogglePause flips between running and paused and returns the new state.
func (c *Context) TogglePause() State {
	c.SetPaused(!c.Paused())
	return c.state
}

// Reset returns the clock to its startup state. The pause state is kept so a
// reset while paused shows the fresh population without animating it.
func (c *Context) Reset() {
	c.started = false
	c.lastTick = time.Time{}
	c.elapsed = 0
	c.ticks = 0
	c.frames = 0
}

package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextAdvance(t *testing.T) {
	ctx := NewContext()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, float32(0), ctx.Advance(start), "first tick uses dt = 0")
	assert.InDelta(t, 0.016, ctx.Advance(start.Add(16*time.Millisecond)), 1e-6)
	assert.InDelta(t, 0.016, ctx.Elapsed(), 1e-9)
	assert.Equal(t, uint64(2), ctx.Frames())
}

func TestContextAdvanceClampsNegative(t *testing.T) {
	ctx := NewContext()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx.Advance(start)

	assert.Equal(t, float32(0), ctx.Advance(start.Add(-time.Second)))
	assert.Equal(t, 0.0, ctx.Elapsed())
	// the clock follows the host even when it moved backwards
	assert.InDelta(t, 0.5, ctx.Advance(start.Add(-500*time.Millisecond)), 1e-6)
}

func TestContextTogglePauseIsIdempotentInPairs(t *testing.T) {
	ctx := NewContext()
	assert.Equal(t, StateRunning, ctx.State())

	assert.Equal(t, StatePaused, ctx.TogglePause())
	assert.True(t, ctx.Paused())
	assert.Equal(t, StateRunning, ctx.TogglePause())
	assert.False(t, ctx.Paused())
	assert.Equal(t, uint64(0), ctx.Ticks())
}

func TestContextResetKeepsPauseState(t *testing.T) {
	ctx := NewContext()
	start := time.Now()
	ctx.Advance(start)
	ctx.Advance(start.Add(time.Second))
	ctx.MarkTick()
	ctx.SetPaused(true)

	ctx.Reset()

	assert.Equal(t, 0.0, ctx.Elapsed())
	assert.Equal(t, uint64(0), ctx.Ticks())
	assert.True(t, ctx.Paused())
	assert.Equal(t, float32(0), ctx.Advance(start.Add(5*time.Second)))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestDetachedSpawner(t *testing.T) {
	s := NewDetachedSpawner()
	h := s.Spawn(SpawnSpec{Name: "ball"})
	h.SetPosition(1, 2, 3)
	assert.Equal(t, 1, s.Live())

	dh := h.(*DetachedHandle)
	assert.Equal(t, [3]float32{1, 2, 3}, dh.Position)

	s.Release(h)
	s.Release(h)
	spawned, released := s.Counts()
	assert.Equal(t, 1, spawned)
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, s.Live())
}

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualHostStepRunsOnlyEarlierRequests(t *testing.T) {
	h := NewManualHost()
	runs := 0
	var again func()
	again = func() {
		runs++
		h.RequestFrame(again)
	}
	h.RequestFrame(again)

	assert.Equal(t, 1, h.Step())
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, h.Pending())
	assert.Equal(t, 1, h.Step())
	assert.Equal(t, 2, runs)
}

func TestTickerHostRunFrames(t *testing.T) {
	h := NewTickerHost(1000)
	assert.Equal(t, time.Millisecond, h.Interval())

	runs := 0
	var again func()
	again = func() {
		runs++
		h.RequestFrame(again)
	}
	h.RequestFrame(again)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, h.RunFrames(ctx, 5))
	assert.Equal(t, 5, runs)
}

func TestTickerHostStopsOnCancel(t *testing.T) {
	h := NewTickerHost(0)
	assert.Equal(t, time.Second/60, h.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, h.Run(ctx), context.Canceled)
}

package scheduler

import (
	"context"
	"sync"
	"time"
)

// FrameHost is the host's "run after the next display refresh" primitive.
type FrameHost interface {
	// RequestFrame schedules fn to run once on the host's loop goroutine after
	// the next refresh.
	//
	// Parameters:
	//   - fn: the frame callback
	RequestFrame(fn func())
}

// ManualHost runs frame callbacks only when stepped. It is used by tests and by
// callers that drive frames themselves.
type ManualHost struct {
	mu      sync.Mutex
	pending []func()
}

var _ FrameHost = &ManualHost{}

// NewManualHost creates a host with no pending frames.
func NewManualHost() *ManualHost {
	return &ManualHost{}
}

func (h *ManualHost) RequestFrame(fn func()) {
	h.mu.Lock()
	h.pending = append(h.pending, fn)
	h.mu.Unlock()
}

// Step runs every callback requested before the call. Callbacks requested while
// stepping wait for the next Step.
//
// Returns:
//   - int: the number of callbacks run
func (h *ManualHost) Step() int {
	h.mu.Lock()
	frame := h.pending
	h.pending = nil
	h.mu.Unlock()

	for _, fn := range frame {
		fn()
	}
	return len(frame)
}

// Pending returns the number of callbacks waiting for the next Step.
func (h *ManualHost) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// TickerHost refreshes at a fixed rate on the goroutine that calls Run. It
// stands in for a display when running without a window.
type TickerHost struct {
	manual   ManualHost
	interval time.Duration
}

var _ FrameHost = &TickerHost{}

// NewTickerHost creates a host that refreshes fps times per second. Values <= 0
// default to 60.
func NewTickerHost(fps float64) *TickerHost {
	if fps <= 0 {
		fps = 60
	}
	return &TickerHost{interval: time.Duration(float64(time.Second) / fps)}
}

func (h *TickerHost) RequestFrame(fn func()) {
	h.manual.RequestFrame(fn)
}

// Interval returns the refresh period.
func (h *TickerHost) Interval() time.Duration {
	return h.interval
}

// Run refreshes until ctx is done.
//
// Returns:
//   - error: the context's error
func (h *TickerHost) Run(ctx context.Context) error {
	return h.RunFrames(ctx, 0)
}

// RunFrames refreshes until ctx is done or, when frames > 0, until that many
// refreshes have run at least one callback.
//
// Parameters:
//   - ctx: cancels the loop
//   - frames: the number of refreshes to run, 0 for no limit
//
// Returns:
//   - error: the context's error if it ended the loop, nil otherwise
func (h *TickerHost) RunFrames(ctx context.Context, frames int) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	done := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if h.manual.Step() > 0 {
				done++
			}
			if frames > 0 && done >= frames {
				return nil
			}
		}
	}
}

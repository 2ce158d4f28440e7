package profiler

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often stats are logged.
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithTimeProvider sets the time source.
func WithTimeProvider(tp clock.TimeProvider) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.clock = tp
	}
}

// WithLogger sets the logger reports are written to.
func WithLogger(l *slog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = l
	}
}

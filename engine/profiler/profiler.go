package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-demos/engine/clock"
)

// Profiler tracks frame rate, simulation rate and memory statistics.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	frameCount     int
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastFaults     uint64

	clock  clock.TimeProvider
	logger *slog.Logger

	// last holds the most recent report.
	last Report
}

// Report is one logged sample.
type Report struct {
	FPS        float64
	TPS        float64
	Faults     uint64
	HeapMB     float64
	AllocRate  float64
	GCCount    uint32
	MaxPauseUs uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		clock:          clock.NewTimeProvider(),
		logger:         slog.Default(),
	}
	for _, option := range options {
		option(p)
	}
	p.logger = p.logger.With("component", "profiler")
	p.lastTime = p.clock.Now()
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - simulated: whether the simulation advanced this frame
//   - faults: the scheduler's total fault count so far
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(simulated bool, faults uint64) bool {
	p.frameCount++
	if simulated {
		p.tickCount++
	}
	currentTime := p.clock.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc

	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.last = Report{
		FPS:        float64(p.frameCount) / elapsed.Seconds(),
		TPS:        float64(p.tickCount) / elapsed.Seconds(),
		Faults:     faults - p.lastFaults,
		HeapMB:     float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRate:  float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:    gcCount,
		MaxPauseUs: maxPauseUs,
	}
	p.logger.Info("frame stats",
		"fps", p.last.FPS,
		"tps", p.last.TPS,
		"faults", p.last.Faults,
		"heap_mb", p.last.HeapMB,
		"alloc_mb_s", p.last.AllocRate,
		"gc", gcCount,
		"gc_max_pause_us", maxPauseUs,
	)

	p.frameCount = 0
	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastFaults = faults
	return true
}

// Last returns the most recent logged report.
func (p *Profiler) Last() Report {
	return p.last
}

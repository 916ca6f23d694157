package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats is one reporting interval's worth of measurements.
type Stats struct {
	FPS         float64
	Frames      int
	UpdateMean  time.Duration
	UpdateMax   time.Duration
	Nodes       int
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate, scene update time and memory statistics.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger *slog.Logger
	now    func() time.Time

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	updateStart time.Time
	updateTotal time.Duration
	updateMax   time.Duration
	updates     int

	last Stats
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second
// and the logger to slog.Default().
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Begin marks the start of a scene update.
func (p *Profiler) Begin() {
	p.updateStart = p.now()
}

// End marks the end of the scene update started by Begin.
func (p *Profiler) End() {
	d := p.now().Sub(p.updateStart)
	p.updateTotal += d
	p.updateMax = max(p.updateMax, d)
	p.updates++
}

// Last returns the stats logged by the most recent reporting Tick.
func (p *Profiler) Last() Stats {
	return p.last
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - nodeCount: live scene nodes this frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(nodeCount int) bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		Frames: p.frameCount,
		Nodes:  nodeCount,
		HeapMB: float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:  float64(p.memStats.Sys) / 1024 / 1024,
	}
	s.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()
	if p.updates > 0 {
		s.UpdateMean = p.updateTotal / time.Duration(p.updates)
		s.UpdateMax = p.updateMax
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	s.GCCount = gcCount
	if gcCount > 0 {
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profiler",
		"fps", s.FPS,
		"update_mean", s.UpdateMean,
		"update_max", s.UpdateMax,
		"nodes", s.Nodes,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.updateTotal, p.updateMax, p.updates = 0, 0, 0
	return true
}

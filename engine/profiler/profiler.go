package profiler

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
)

// Profiler tracks frame rate, per stage CPU recording time and memory statistics.
// Samples are logged at Info level once per update interval.
type Profiler struct {
	mu sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// stageTotals accumulates recording time per stage label since the last sample
	stageTotals map[string]time.Duration
	// skipped counts fail-soft stage skips since the last sample
	skipped int
}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		stageTotals:    make(map[string]time.Duration),
	}
}

// SetInterval changes how often samples are logged.
func (p *Profiler) SetInterval(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d > 0 {
		p.updateInterval = d
	}
}

// RecordStage adds the CPU time spent recording one stage for one view.
func (p *Profiler) RecordStage(label string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stageTotals[label] += d
}

// RecordSkip counts a stage that skipped its work because an input was not ready.
func (p *Profiler) RecordSkip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
}

// Tick should be called once per frame. When the update interval has elapsed it logs
// FPS, the slowest stages, heap usage, allocation rate and GC pauses.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	logger.Logger().Info("profiler",
		"fps", fps,
		"slowest_stages", p.slowestStages(3),
		"skipped", p.skipped,
		"heap_mb", allocMB,
		"alloc_rate_mb_s", allocRateMB,
		"gc", gcCount,
		"gc_last_us", lastPauseUs,
		"gc_max_us", maxPauseUs,
		"sys_mb", sysMB,
	)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.skipped = 0
	clear(p.stageTotals)
	return true
}

// Stages returns the accumulated recording time per stage since the last logged sample.
func (p *Profiler) Stages() map[string]time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]time.Duration, len(p.stageTotals))
	for k, v := range p.stageTotals {
		out[k] = v
	}
	return out
}

func (p *Profiler) slowestStages(n int) []string {
	labels := make([]string, 0, len(p.stageTotals))
	for label := range p.stageTotals {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return p.stageTotals[labels[i]] > p.stageTotals[labels[j]]
	})
	if len(labels) > n {
		labels = labels[:n]
	}
	return labels
}

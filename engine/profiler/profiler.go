package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/surveyviz/pointglobe/engine/syncloop"
)

// SyncStatsSource supplies cumulative camera-sync counters for reporting.
// Satisfied by syncloop.Loop.
type SyncStatsSource interface {
	Stats() syncloop.Stats
}

// Profiler tracks frame rate, memory, and camera-sync statistics for
// performance monitoring. Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	syncSource SyncStatsSource
	lastSync   syncloop.Stats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// SetSyncStatsSource attaches a camera-sync loop whose skip counters are
// included in each stats line. Pass nil to detach.
//
// Parameters:
//   - source: the sync loop to report on, or nil
func (p *Profiler) SetSyncStatsSource(source SyncStatsSource) {
	p.syncSource = source
	if source != nil {
		p.lastSync = source.Stats()
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times,
// total memory, and (when a sync source is attached) per-interval sync counts.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		if p.syncSource != nil {
			cur := p.syncSource.Stats()
			log.Printf("[Profiler] Sync: %d ticks | %d synced | skipped: %d distance, %d validity, %d height | %d render errors",
				cur.Ticks-p.lastSync.Ticks,
				cur.Synced-p.lastSync.Synced,
				cur.SkippedDistance-p.lastSync.SkippedDistance,
				cur.SkippedValidity-p.lastSync.SkippedValidity,
				cur.SkippedHeight-p.lastSync.SkippedHeight,
				cur.RenderErrors-p.lastSync.RenderErrors)
			p.lastSync = cur
		}

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}

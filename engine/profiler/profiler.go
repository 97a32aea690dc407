package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-polyline/engine/renderer"
)

// Profiler aggregates renderer frame statistics and memory usage, writing one summary line
// to the log per update interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	drawn     int
	failed    int
	drawCalls int
	instances int
	frameTime time.Duration

	now    func() time.Time
	output func(string)
}

// Summary is one interval's averages.
type Summary struct {
	FPS          float64
	Drawn        float64
	Failed       int
	DrawCalls    float64
	Instances    float64
	AvgFrameTime time.Duration
}

// String formats the frame part of the summary.
func (s Summary) String() string {
	return fmt.Sprintf("FPS: %.2f | Frame: %v | Polylines: %.1f (failed %d) | Draws: %.1f | Instances: %.0f",
		s.FPS, s.AvgFrameTime.Round(time.Microsecond), s.Drawn, s.Failed, s.DrawCalls, s.Instances)
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		now:            time.Now,
		output:         func(line string) { log.Print(line) },
	}
	p.lastTime = p.now()
	return p
}

// Tick records one rendered frame. Logs and returns the interval summary when the update
// interval has elapsed.
//
// Parameters:
//   - stats: the statistics of the frame just rendered
//
// Returns:
//   - Summary: the interval averages, valid when ok is true
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats renderer.FrameStats) (Summary, bool) {
	p.frameCount++
	p.drawn += stats.Drawn
	p.failed += stats.Failed
	p.drawCalls += stats.DrawCalls
	p.instances += stats.Instances
	p.frameTime += stats.Duration

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Summary{}, false
	}

	n := float64(p.frameCount)
	summary := Summary{
		FPS:          n / elapsed.Seconds(),
		Drawn:        float64(p.drawn) / n,
		Failed:       p.failed,
		DrawCalls:    float64(p.drawCalls) / n,
		Instances:    float64(p.instances) / n,
		AvgFrameTime: p.frameTime / time.Duration(p.frameCount),
	}

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var maxPauseUs uint64
	startIdx := p.lastGCCount
	if gcCount-startIdx > 256 {
		startIdx = gcCount - 256
	}
	// PauseNs is a circular buffer of the last 256 pauses.
	for i := startIdx; i < gcCount; i++ {
		maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
	}

	p.output(fmt.Sprintf("[Profiler] %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs) | Sys: %.2f MB",
		summary, allocMB, allocRateMB, gcCount, maxPauseUs, sysMB))

	p.frameCount = 0
	p.drawn, p.failed, p.drawCalls, p.instances = 0, 0, 0, 0
	p.frameTime = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return summary, true
}

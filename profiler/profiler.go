// Package profiler - Runtime profiling for pooling workloads.
package profiler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// RuntimeProfiler tracks operation timings and memory statistics, and can
// emit periodic status reports while a workload runs. It is safe for use
// from multiple goroutines.
type RuntimeProfiler struct {
	reportInterval time.Duration
	maxSamples     int

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	startTime time.Time
	running   bool

	memStats       runtime.MemStats
	lastGCCount    uint32
	operationTimes map[string]*TimeTracker
}

// TimeTracker tracks timing statistics for one named operation.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats is a read-only snapshot of one operation's timings.
type OperationStats struct {
	Name    string
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	Count   int64
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often to emit status reports (default: 2s).
	ReportInterval time.Duration
	// MaxSamples specifies the maximum number of samples kept per
	// operation (default: 600).
	MaxSamples int
}

// NewRuntimeProfiler creates a new runtime profiler with the specified
// options.
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		operationTimes: make(map[string]*TimeTracker),
	}
}

// Start begins periodic status reporting in a background goroutine. Calling
// Start on a running profiler is a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.running {
		return
	}
	rp.running = true
	rp.startTime = time.Now()

	rp.wg.Add(1)
	go func() {
		defer rp.wg.Done()
		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rp.ctx.Done():
				return
			case <-ticker.C:
				rp.emitStatusReport()
			}
		}
	}()
}

// Stop gracefully stops the reporter and waits for it to finish.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

// StartOperation begins timing an operation.
//
// Arguments:
//   - name: The name of the operation to track.
//
// Returns:
//   - A function to call when the operation completes.
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.recordOperationTime(name, time.Since(start))
	}
}

func (rp *RuntimeProfiler) recordOperationTime(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{minTime: duration, maxTime: duration}
		rp.operationTimes[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > rp.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++
	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// OperationStats returns a snapshot of the named operation's timings and
// whether the operation has been recorded at all.
func (rp *RuntimeProfiler) OperationStats(name string) (OperationStats, bool) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	tracker, ok := rp.operationTimes[name]
	if !ok || len(tracker.durations) == 0 {
		return OperationStats{}, false
	}
	return OperationStats{
		Name:    name,
		Average: tracker.totalTime / time.Duration(len(tracker.durations)),
		Min:     tracker.minTime,
		Max:     tracker.maxTime,
		Count:   tracker.count,
	}, true
}

// emitStatusReport prints uptime, memory, GC, and operation timing state.
func (rp *RuntimeProfiler) emitStatusReport() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)
	uptime := time.Since(rp.startTime)

	fmt.Printf("RUNTIME PROFILER STATUS REPORT - %s\n", time.Now().Format("15:04:05.000"))
	fmt.Printf("Uptime: %v | Goroutines: %d\n", uptime.Truncate(time.Millisecond), runtime.NumGoroutine())

	fmt.Printf("\nMEMORY USAGE:\n")
	fmt.Printf("  Alloc: %s\n", formatBytes(rp.memStats.Alloc))
	fmt.Printf("  Heap Alloc: %s\n", formatBytes(rp.memStats.HeapAlloc))
	fmt.Printf("  Heap Objects: %d\n", rp.memStats.HeapObjects)

	if rp.memStats.NumGC > rp.lastGCCount {
		fmt.Printf("\nGARBAGE COLLECTION:\n")
		fmt.Printf("  GC Cycles: %d (new: %d)\n", rp.memStats.NumGC, rp.memStats.NumGC-rp.lastGCCount)
		fmt.Printf("  GC CPU Fraction: %.4f%%\n", rp.memStats.GCCPUFraction*100)
		rp.lastGCCount = rp.memStats.NumGC
	}

	if len(rp.operationTimes) > 0 {
		fmt.Printf("\nOPERATION TIMINGS:\n")
		for name, tracker := range rp.operationTimes {
			if len(tracker.durations) == 0 {
				continue
			}
			avgTime := tracker.totalTime / time.Duration(len(tracker.durations))
			fmt.Printf("  %s: avg=%v, min=%v, max=%v, count=%d\n",
				name, avgTime.Truncate(time.Microsecond),
				tracker.minTime.Truncate(time.Microsecond),
				tracker.maxTime.Truncate(time.Microsecond),
				len(tracker.durations))
		}
	}
}

// formatBytes formats byte counts in human-readable form.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

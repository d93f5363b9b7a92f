package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationTiming(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})

	stop := rp.StartOperation("pooling")
	time.Sleep(5 * time.Millisecond)
	stop()
	rp.StartOperation("pooling")() // near-zero duration sample

	stats, ok := rp.OperationStats("pooling")
	require.True(t, ok)
	assert.Equal(t, int64(2), stats.Count)
	assert.GreaterOrEqual(t, stats.Max, 5*time.Millisecond)
	assert.LessOrEqual(t, stats.Min, stats.Average)
	assert.LessOrEqual(t, stats.Average, stats.Max)

	_, ok = rp.OperationStats("unknown")
	assert.False(t, ok)
}

func TestSampleWindowEviction(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{MaxSamples: 3})
	for i := 0; i < 10; i++ {
		rp.recordOperationTime("op", time.Duration(i+1)*time.Millisecond)
	}

	stats, ok := rp.OperationStats("op")
	require.True(t, ok)
	// Count tracks every recording, the window keeps only the newest three.
	assert.Equal(t, int64(10), stats.Count)
	assert.Equal(t, 9*time.Millisecond, stats.Average)
}

func TestStartStopIdempotent(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{ReportInterval: time.Hour})
	rp.Start()
	rp.Start()
	rp.Stop()
	rp.Stop()
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(3*1024*1024/2))
}

//go:build linux

package procmetrics

import (
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfSource(t *testing.T) {
	src, err := NewSelfSource()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), src.PID())

	uptime, err := src.UptimeMillis()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, uptime, float64(0))

	count, err := src.CPUCount()
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	threads, err := src.ListThreads()
	require.NoError(t, err)
	require.NotEmpty(t, threads)

	var main *Thread
	for i := range threads {
		assert.GreaterOrEqual(t, threads[i].CPUTimeNanos, int64(0))
		if threads[i].ID == int64(os.Getpid()) {
			main = &threads[i]
		}
	}
	require.NotNil(t, main, "main thread should be listed")
	assert.NotEmpty(t, main.Name)

	mem, err := src.MemoryUsed()
	require.NoError(t, err)
	assert.Greater(t, mem, uint64(0))

	_, err = src.ProcessCPUUsage()
	assert.NoError(t, err)
}

func TestSelfSource_UptimeAdvances(t *testing.T) {
	src, err := NewSelfSource()
	require.NoError(t, err)

	now := time.Now()
	src.now = func() time.Time { return now }
	first, err := src.UptimeMillis()
	require.NoError(t, err)

	src.now = func() time.Time { return now.Add(5 * time.Second) }
	second, err := src.UptimeMillis()
	require.NoError(t, err)
	assert.Equal(t, float64(5000), second-first)
}

func TestSelfSource_CPUTimeIsCumulative(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	src, err := NewSelfSource()
	require.NoError(t, err)

	total := func() int64 {
		threads, err := src.ListThreads()
		require.NoError(t, err)
		var sum int64
		for _, th := range threads {
			sum += th.CPUTimeNanos
		}
		return sum
	}

	before := total()
	deadline := time.Now().Add(50 * time.Millisecond)
	for x := 0; time.Now().Before(deadline); x++ {
		_ = x * x
	}
	assert.GreaterOrEqual(t, total(), before)
}

func TestFindProcessByName_NotFound(t *testing.T) {
	_, err := FindProcessByName("definitely-not-a-running-binary")
	assert.Error(t, err)
}

package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOptions_Enabled(t *testing.T) {
	assert.False(t, Options{}.Enabled())
	assert.True(t, Options{HeapProfile: "heap.prof"}.Enabled())
}

func TestProfiler_AllProfiles(t *testing.T) {
	// Given: every profile requested
	dir := t.TempDir()
	opts := Options{
		CPUProfile:  filepath.Join(dir, "cpu.prof"),
		HeapProfile: filepath.Join(dir, "heap.prof"),
		Trace:       filepath.Join(dir, "trace.out"),
	}

	// When: profiling some work
	p, err := Start(opts)
	require.NoError(t, err)
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i
	}
	_ = sum
	require.NoError(t, p.Stop())

	// Then: every file has content
	nonEmpty(t, opts.CPUProfile)
	nonEmpty(t, opts.HeapProfile)
	nonEmpty(t, opts.Trace)

	// And: a second Stop is a no-op
	assert.NoError(t, p.Stop())
}

func TestProfiler_HeapOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.prof")

	p, err := Start(Options{HeapProfile: path})
	require.NoError(t, err)
	require.NoError(t, p.Stop())

	nonEmpty(t, path)
}

func TestStart_BadPath(t *testing.T) {
	_, err := Start(Options{CPUProfile: filepath.Join(t.TempDir(), "missing", "cpu.prof")})

	assert.Error(t, err)
}

func TestStart_TraceFailureStopsCPU(t *testing.T) {
	dir := t.TempDir()

	_, err := Start(Options{
		CPUProfile: filepath.Join(dir, "cpu.prof"),
		Trace:      filepath.Join(dir, "missing", "trace.out"),
	})
	require.Error(t, err)

	// CPU profiling was stopped, so it can start again.
	p, err := Start(Options{CPUProfile: filepath.Join(dir, "cpu2.prof")})
	require.NoError(t, err)
	assert.NoError(t, p.Stop())
}

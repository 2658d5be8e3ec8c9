package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChanged(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changed():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	w, err := NewWatcher(path, WithDebounceDuration(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0o644))
	assert.True(t, waitChanged(t, w, 2*time.Second), "expected a change notification")
}

func TestWatcher_CoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	w, err := NewWatcher(path, WithDebounceDuration(100*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a\n"+string(rune('0'+i))+"\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, waitChanged(t, w, 2*time.Second))
	assert.False(t, waitChanged(t, w, 300*time.Millisecond), "burst should produce one notification")
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	w, err := NewWatcher(path, WithDebounceDuration(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	assert.False(t, waitChanged(t, w, 200*time.Millisecond))
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	w, err := NewWatcher(path)
	require.NoError(t, err)

	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	w.Stop()
	w.Stop()
	assert.Error(t, w.Start())
}

func TestWatcher_StartAfterStopFails(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "data.csv"))
	require.NoError(t, err)

	require.NoError(t, w.Start())
	w.Stop()
	err = w.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped")
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "data.csv"))
	require.NoError(t, err)
	w.Stop()
}

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshotMonitorMissingDir(t *testing.T) {
	_, err := NewSnapshotMonitor(filepath.Join(t.TempDir(), "absent", "stops.csv"))
	require.Error(t, err)
}

func TestSnapshotMonitorStopsOnCancel(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "stops.csv")
	monitor, err := NewSnapshotMonitor(snapshot)
	require.NoError(t, err)
	defer monitor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- monitor.Watch(ctx, func(string) {})
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestSnapshotMonitorFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "stops.csv")
	monitor, err := NewSnapshotMonitor(snapshot)
	require.NoError(t, err)
	defer monitor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 1)
	go monitor.Watch(ctx, func(path string) {
		select {
		case fired <- path:
		default:
		}
	})

	// other files in the directory must not trigger a rebuild
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(snapshot, []byte("OBJECTID\n1\n"), 0644))

	select {
	case path := <-fired:
		assert.Equal(t, filepath.Clean(snapshot), filepath.Clean(path))
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild triggered for snapshot write")
	}
}

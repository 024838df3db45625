// monitor.go
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SnapshotMonitor watches the data directory and fires when the snapshot
// file is rewritten, so a manually refreshed extract triggers a rebuild
// without restarting the process.
type SnapshotMonitor struct {
	snapshotPath string
	watcher      *fsnotify.Watcher
	lastMod      time.Time
	mu           sync.Mutex
}

func NewSnapshotMonitor(snapshotPath string) (*SnapshotMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(snapshotPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &SnapshotMonitor{
		snapshotPath: snapshotPath,
		watcher:      watcher,
	}, nil
}

func (m *SnapshotMonitor) Close() error {
	return m.watcher.Close()
}

// Watch blocks until the context is cancelled, invoking handler for every
// fresh write of the snapshot file. Writes that do not advance the mod
// time are ignored, which debounces editors and partial flushes.
func (m *SnapshotMonitor) Watch(ctx context.Context, handler func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.snapshotPath) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}

			m.mu.Lock()
			if info.ModTime().After(m.lastMod) {
				m.lastMod = info.ModTime()
				go handler(event.Name)
			}
			m.mu.Unlock()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

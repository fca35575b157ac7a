package logstore

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch notifies on every change to the log file until stop is called.
// The returned channel has a one-slot buffer and coalesces bursts; a
// viewer re-snapshots on receive, so dropped intermediate signals are
// harmless.
//
// The watch is on the parent directory, not the file: retention rewrites
// go through a temp file and rename, which creates a new inode that a
// file-level watch on the old one would miss.
func (s *Store) Watch() (<-chan struct{}, func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	dir := filepath.Dir(s.path)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	target := filepath.Base(s.path)
	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changes <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watcher errors are non-fatal; the viewer still has
				// its polling fallback.
			}
		}
	}()

	return changes, watcher.Close, nil
}

// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package encyclopedia

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// DATASET WATCHER
// =============================================================================

// datasetWatcher reloads the index when a dataset file changes on disk.
// Editors and sync tools replace files via rename, so the parent
// directories are watched rather than the files themselves.
type datasetWatcher struct {
	idx      *ReferenceIndex
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Watch starts watching the dataset files for changes. Reloads are
// debounced so a burst of write events triggers a single rebuild.
func (idx *ReferenceIndex) Watch(debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	dw := &datasetWatcher{
		idx:      idx,
		watcher:  watcher,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}

	dirs := map[string]struct{}{
		filepath.Dir(idx.entriesPath):   {},
		filepath.Dir(idx.locationsPath): {},
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			cancel()
			return err
		}
	}

	go dw.processEvents()
	go dw.processPending()

	idx.watcher = dw
	return nil
}

// StopWatching stops the watcher if one is running.
func (idx *ReferenceIndex) StopWatching() error {
	if idx.watcher == nil {
		return nil
	}
	err := idx.watcher.close()
	idx.watcher = nil
	return err
}

// processEvents marks a reload pending when a dataset file changes.
func (dw *datasetWatcher) processEvents() {
	for {
		select {
		case <-dw.ctx.Done():
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !dw.isDatasetFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			dw.mu.Lock()
			dw.pending = time.Now()
			dw.mu.Unlock()

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.idx.log.WithError(err).Warn("dataset watcher error")
		}
	}
}

// isDatasetFile reports whether path is one of the watched dataset files.
func (dw *datasetWatcher) isDatasetFile(path string) bool {
	return filepath.Clean(path) == filepath.Clean(dw.idx.entriesPath) ||
		filepath.Clean(path) == filepath.Clean(dw.idx.locationsPath)
}

// processPending fires the debounced reload.
func (dw *datasetWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-dw.ctx.Done():
			return

		case <-ticker.C:
			dw.mu.Lock()
			due := !dw.pending.IsZero() && time.Since(dw.pending) >= dw.debounce
			if due {
				dw.pending = time.Time{}
			}
			dw.mu.Unlock()

			if due {
				if err := dw.idx.Reload(); err != nil {
					dw.idx.log.WithError(err).Warn("dataset reload failed, keeping previous index")
				}
			}
		}
	}
}

// close stops the goroutines and releases the fsnotify watcher.
func (dw *datasetWatcher) close() error {
	dw.cancel()
	return dw.watcher.Close()
}

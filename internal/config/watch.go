// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER INTERFACE
// =============================================================================

// Watcher is the interface for config file watching implementations
type Watcher interface {
	// Watch starts watching for config changes
	Watch() error

	// Close stops watching and releases resources
	Close() error
}

// ReloadFunc is called with the freshly loaded config after a change.
type ReloadFunc func(*Config)

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher watches the config file using fsnotify.
//
// The config directory (not the file) is watched because editors and
// SaveTOML replace the file, which would orphan a file-level watch.
type FsnotifyWatcher struct {
	path     string
	onReload ReloadFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration
	mu       sync.Mutex
	pending  time.Time
	dirty    bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewFsnotifyWatcher creates a new fsnotify-based config watcher for path.
func NewFsnotifyWatcher(path string, debounce time.Duration, onReload ReloadFunc) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FsnotifyWatcher{
		path:     path,
		onReload: onReload,
		watcher:  watcher,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}

	return fw, nil
}

// Watch starts watching for config changes
func (fw *FsnotifyWatcher) Watch() error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	go fw.processEvents()
	go fw.processPending()

	return nil
}

// processEvents processes file system events
func (fw *FsnotifyWatcher) processEvents() {
	// Panic recovery keeps a watcher failure from taking down the app
	defer func() {
		if r := recover(); r != nil {
			_ = r
		}
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			// Only the config file itself is interesting
			if filepath.Clean(event.Name) != filepath.Clean(fw.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fw.mu.Lock()
				fw.pending = time.Now()
				fw.dirty = true
				fw.mu.Unlock()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal
			_ = err
		}
	}
}

// processPending fires the reload callback after the debounce window.
// Editors often emit several events per save; debouncing collapses them
// into a single reload.
func (fw *FsnotifyWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case <-ticker.C:
			fw.mu.Lock()
			ready := fw.dirty && time.Since(fw.pending) >= fw.debounce
			if ready {
				fw.dirty = false
			}
			fw.mu.Unlock()

			if ready {
				fw.reload()
			}
		}
	}
}

// reload loads the config from disk and invokes the callback. A config that
// fails to load or validate is ignored; the previous config stays active.
func (fw *FsnotifyWatcher) reload() {
	cfg, err := LoadFromPath(fw.path)
	if err != nil {
		return
	}
	if fw.onReload != nil {
		fw.onReload(cfg)
	}
}

// Close stops watching and releases resources
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	if fw.watcher != nil {
		return fw.watcher.Close()
	}
	return nil
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher watches the config file using periodic mtime polling.
type PollingWatcher struct {
	path     string
	onReload ReloadFunc
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	modTime  time.Time
}

// NewPollingWatcher creates a new polling-based config watcher for path.
func NewPollingWatcher(path string, interval time.Duration, onReload ReloadFunc) *PollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())

	return &PollingWatcher{
		path:     path,
		onReload: onReload,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch starts watching for config changes
func (pw *PollingWatcher) Watch() error {
	if info, err := os.Stat(pw.path); err == nil {
		pw.modTime = info.ModTime()
	}

	go pw.poll()
	return nil
}

// poll periodically checks for config changes
func (pw *PollingWatcher) poll() {
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return

		case <-ticker.C:
			pw.checkChange()
		}
	}
}

// checkChange reloads when the file's mtime has moved.
func (pw *PollingWatcher) checkChange() {
	info, err := os.Stat(pw.path)
	if err != nil {
		return
	}

	pw.mu.Lock()
	changed := !info.ModTime().Equal(pw.modTime)
	if changed {
		pw.modTime = info.ModTime()
	}
	pw.mu.Unlock()

	if !changed {
		return
	}

	cfg, err := LoadFromPath(pw.path)
	if err != nil {
		return
	}
	if pw.onReload != nil {
		pw.onReload(cfg)
	}
}

// Close stops watching
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	return nil
}

// =============================================================================
// WATCHER FACTORY
// =============================================================================

// StartWatcher starts a watcher on the default config file
// (fsnotify or polling fallback). The callback receives each successfully
// reloaded config.
func StartWatcher(onReload ReloadFunc) (Watcher, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	return StartWatcherOn(path, onReload)
}

// StartWatcherOn starts a watcher on a specific config file.
func StartWatcherOn(path string, onReload ReloadFunc) (Watcher, error) {
	// Try fsnotify first
	fw, err := NewFsnotifyWatcher(path, 200*time.Millisecond, onReload)
	if err == nil {
		if err := fw.Watch(); err == nil {
			return fw, nil
		}
		fw.Close()
	}

	// Fallback to polling watcher
	pw := NewPollingWatcher(path, 2*time.Second, onReload)
	if err := pw.Watch(); err != nil {
		return nil, err
	}
	return pw, nil
}

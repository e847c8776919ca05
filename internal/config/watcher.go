// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives the reloaded configuration, or the error that
// prevented the reload.
type ChangeFunc func(*Config, error)

// Watcher reloads a config file when it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename still produce events.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange ChangeFunc

	mu      sync.Mutex
	pending time.Time // zero when nothing is queued

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewWatcher starts watching path. onChange is called from a background
// goroutine at most once per debounce window.
func NewWatcher(path string, debounce time.Duration, onChange ChangeFunc) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config watcher: no config file to watch")
	}
	if onChange == nil {
		return nil, errors.New("config watcher: nil change callback")
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:     abs,
		watcher:  fsw,
		debounce: debounce,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}

	w.done.Add(2)
	go w.processEvents()
	go w.processPending()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) processEvents() {
	defer w.done.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onChange(nil, err)
		}
	}
}

func (w *Watcher) processPending() {
	defer w.done.Done()

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case now := <-ticker.C:
			w.mu.Lock()
			due := !w.pending.IsZero() && now.Sub(w.pending) >= w.debounce
			if due {
				w.pending = time.Time{}
			}
			w.mu.Unlock()

			if due {
				w.onChange(LoadFromPath(w.path))
			}
		}
	}
}

// Close stops watching and waits for the background goroutines to exit.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.done.Wait()
	return err
}

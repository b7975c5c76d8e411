// Package watcher reloads the open document when it changes on disk.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DocumentWatcher monitors one document file and invokes a reload callback
// after disk changes settle. It watches the parent directory rather than
// the file itself because editors commonly save through a rename, which
// would otherwise drop the watch.
type DocumentWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func(path string)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	path  string // absolute path of the watched document, "" when idle
	timer *time.Timer
}

// New creates a watcher that calls onChange with the document path once
// changes have been quiet for the debounce window.
func New(debounceMs int, onChange func(path string)) (*DocumentWatcher, error) {
	if debounceMs <= 0 {
		debounceMs = 100
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	dw := &DocumentWatcher{
		watcher:  fsw,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}

	dw.wg.Add(1)
	go dw.processEvents()

	return dw, nil
}

// Watch switches the watcher to the document at path, replacing any
// previous watch.
func (dw *DocumentWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.path != "" {
		_ = dw.watcher.Remove(filepath.Dir(dw.path))
	}
	if dw.timer != nil {
		dw.timer.Stop()
	}

	if err := dw.watcher.Add(filepath.Dir(abs)); err != nil {
		dw.path = ""
		return err
	}
	dw.path = abs
	return nil
}

// Unwatch stops monitoring without closing the watcher.
func (dw *DocumentWatcher) Unwatch() {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.path != "" {
		_ = dw.watcher.Remove(filepath.Dir(dw.path))
		dw.path = ""
	}
	if dw.timer != nil {
		dw.timer.Stop()
	}
}

// Close stops event processing and releases the underlying watcher.
func (dw *DocumentWatcher) Close() error {
	dw.cancel()
	err := dw.watcher.Close()
	dw.wg.Wait()

	dw.mu.Lock()
	if dw.timer != nil {
		dw.timer.Stop()
	}
	dw.mu.Unlock()

	return err
}

func (dw *DocumentWatcher) processEvents() {
	defer dw.wg.Done()

	for {
		select {
		case <-dw.ctx.Done():
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handleEvent(event)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// handleEvent restarts the debounce timer when the watched document is
// written, created, or renamed into place. Events for sibling files in
// the same directory are ignored.
func (dw *DocumentWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.path == "" {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || abs != dw.path {
		return
	}

	if dw.timer != nil {
		dw.timer.Stop()
	}
	dw.timer = time.AfterFunc(dw.debounce, dw.fire)
}

// fire claims the watched path and delivers the change notification.
func (dw *DocumentWatcher) fire() {
	dw.mu.Lock()
	path := dw.path
	dw.mu.Unlock()

	if path == "" || dw.ctx.Err() != nil {
		return
	}
	dw.onChange(path)
}

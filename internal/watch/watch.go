// Package watch reports when the workbook changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce absorbs the burst of events a spreadsheet save produces.
const DefaultDebounce = 500 * time.Millisecond

// FileWatcher watches a single file. Spreadsheet editors save by writing a
// temp file and renaming it over the original, so the parent directory is
// watched and events are filtered by name.
type FileWatcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger

	watcher *fsnotify.Watcher
	changes chan struct{}

	mu      sync.Mutex
	pending time.Time // zero when nothing is waiting
	errors  int

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a watcher for path. Call Start to begin receiving changes.
func New(path string, debounce time.Duration, log *zap.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileWatcher{
		path:     abs,
		debounce: debounce,
		log:      log,
		watcher:  w,
		changes:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (fw *FileWatcher) Path() string { return fw.path }

// Changes delivers one value per settled burst of writes. Bursts that arrive
// while a previous value is unread are coalesced.
func (fw *FileWatcher) Changes() <-chan struct{} { return fw.changes }

// Start begins watching. It is non-blocking.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		_ = fw.watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(fw.path), err)
	}
	go fw.run(ctx)
	return nil
}

// Stop ends the event loop and releases the OS watch. Safe to call twice.
func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
		<-fw.doneCh
		if err := fw.watcher.Close(); err != nil {
			fw.log.Warn("closing file watcher", zap.Error(err))
		}
	})
}

// Errors returns how many watcher errors have been seen.
func (fw *FileWatcher) Errors() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.errors
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	tick := time.NewTicker(fw.debounce / 5)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(ev)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watcher error", zap.Error(err))
			fw.mu.Lock()
			fw.errors++
			fw.mu.Unlock()
		case <-tick.C:
			fw.flush()
		}
	}
}

func (fw *FileWatcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != fw.path {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return
	}
	fw.log.Debug("workbook event", zap.String("op", ev.Op.String()))
	fw.mu.Lock()
	fw.pending = time.Now()
	fw.mu.Unlock()
}

func (fw *FileWatcher) flush() {
	fw.mu.Lock()
	ready := !fw.pending.IsZero() && time.Since(fw.pending) >= fw.debounce
	if ready {
		fw.pending = time.Time{}
	}
	fw.mu.Unlock()

	if !ready {
		return
	}
	select {
	case fw.changes <- struct{}{}:
	default:
	}
}

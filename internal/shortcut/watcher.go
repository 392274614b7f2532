package shortcut

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher triggers a registry reload whenever the local store's backing
// file changes. It watches the parent directory, so the store file may be
// replaced or recreated without losing the watch.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	path     string
	dir      string
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for the store file at path. Call Start to
// begin watching and Close to release the underlying file watcher.
func NewWatcher(reg *Registry, path string, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		registry: reg,
		watcher:  fw,
		path:     filepath.Clean(path),
		dir:      filepath.Dir(filepath.Clean(path)),
		logger:   logger,
		debounce: 500 * time.Millisecond, // coalesce rapid writes
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking; events are handled in a
// goroutine until ctx is cancelled or Close is called. Reload failures are
// logged, never fatal: the registry keeps its previous snapshot.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	// Only mark running once the watch is in place: run is the only thing
	// that closes doneCh, so Close must not wait for it otherwise.
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	w.running = true
	w.logger.Debug("watching shortcut store", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// A SQLite store in WAL mode lands long-lived writers'
			// commits in the -wal sidecar until checkpoint, so treat it
			// as part of the watched file.
			if name := filepath.Clean(ev.Name); name != w.path && name != w.path+"-wal" {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			if err := w.registry.ReloadAll(ctx); err != nil {
				w.logger.Warn("reload after store change failed", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("store watcher error", zap.Error(err))

		case <-ctx.Done():
			return

		case <-w.stopCh:
			return
		}
	}
}

// Close stops the watcher and releases its resources. Safe to call before
// Start and more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	err := w.watcher.Close()
	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	return err
}

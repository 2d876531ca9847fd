// Package watcher signals when a coverage report or rules table is rewritten.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change before a signal
// is sent. Builds write a report in several steps.
const DefaultDebounce = 500 * time.Millisecond

// changeOps are the operations that can leave a watched file with new content.
const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watcher follows a set of files through their parent directories, so a
// report that is deleted and regenerated keeps being seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	targets map[string]bool
	dirs    map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger for change and error events.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		targets:  map[string]bool{},
		dirs:     map[string]bool{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// WatchFiles adds files whose directories already exist. The files
// themselves may be created later.
func (w *Watcher) WatchFiles(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, path := range paths {
		target, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		if dir := filepath.Dir(target); !w.dirs[dir] {
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			w.dirs[dir] = true
		}
		w.targets[target] = true
	}
	return nil
}

// Events emits one signal per burst of changes. The channel is closed when
// ctx is done or the watcher is closed.
func (w *Watcher) Events(ctx context.Context) <-chan struct{} {
	out := make(chan struct{})
	go w.loop(ctx, out)
	return out
}

func (w *Watcher) loop(ctx context.Context, out chan<- struct{}) {
	defer close(out)

	quiet := time.NewTimer(w.debounce)
	quiet.Stop()
	defer quiet.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("input changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			pending = true
			quiet.Reset(w.debounce)

		case <-quiet.C:
			if !pending {
				continue
			}
			pending = false
			select {
			case out <- struct{}{}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&changeOps == 0 {
		return false
	}
	target, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.targets[target]
}

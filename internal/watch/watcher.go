// Package watch re-runs synthesis when manifests change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event before a reload.
const DefaultDebounce = 100 * time.Millisecond

type Config struct {
	// Files are the manifests to watch. Their directories are watched so
	// that editors replacing a file by rename are seen too.
	Files []string

	Debounce time.Duration
}

// Watcher delivers debounced change notifications for a set of files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	files    map[string]bool
	debounce *Debouncer

	mu      sync.Mutex
	running bool
}

func New(cfg Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if len(cfg.Files) == 0 {
		return nil, errors.New("watch: no files to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logger,
		files:    make(map[string]bool, len(cfg.Files)),
		debounce: NewDebouncer(cfg.Debounce),
	}
	dirs := make(map[string]bool)
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		logger.Debug("watching directory", zap.String("path", dir))
	}
	return w, nil
}

// Watch blocks until ctx is done, calling onChange with the changed file
// after each debounced burst of events. Errors from onChange are logged and
// watching continues.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watch: already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		w.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watch: events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))

			path := event.Name
			w.debounce.Trigger(func() {
				if err := onChange(path); err != nil {
					w.logger.Error("regeneration failed", zap.String("path", path), zap.Error(err))
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watch: errors channel closed")
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Debouncer runs the latest callback once no trigger arrived for the
// interval.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	cb := d.callback
	stopped := d.stopped
	d.callback = nil
	d.mu.Unlock()
	if cb != nil && !stopped {
		cb()
	}
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

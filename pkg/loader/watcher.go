package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/enclava/sidebars/pkg/metric"
	"github.com/enclava/sidebars/pkg/sidebar"
)

// DefaultDebounce is how long the watcher waits after the last write
// before reloading.
const DefaultDebounce = 100 * time.Millisecond

// ErrNotLoaded is reported by Ready before the first successful load.
var ErrNotLoaded = errors.New("sidebars not loaded")

// Watcher keeps the registry loaded from a file current. A failed reload
// keeps serving the last good registry.
type Watcher struct {
	path     string
	debounce time.Duration
	current  atomic.Pointer[sidebar.Registry]
	reloads  metric.IncrementalCounter
	docs     metric.Setter
	onReload func(*sidebar.Registry)

	mu      sync.Mutex
	lastErr error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period after a write before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithReloadCounter counts reloads by result ("ok" or "error").
func WithReloadCounter(c metric.IncrementalCounter) WatcherOption {
	return func(w *Watcher) { w.reloads = c }
}

// WithDocumentGauge records document counts after every successful load.
func WithDocumentGauge(g metric.Setter) WatcherOption {
	return func(w *Watcher) { w.docs = g }
}

// WithOnReload registers a callback invoked after each successful reload.
func WithOnReload(fn func(*sidebar.Registry)) WatcherOption {
	return func(w *Watcher) { w.onReload = fn }
}

// NewWatcher loads path once and returns a watcher serving the result.
// The initial load must succeed.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		reloads:  metric.Nop{},
		docs:     metric.Nop{},
	}
	for _, opt := range opts {
		opt(w)
	}

	r, err := Load(abs)
	if err != nil {
		return nil, err
	}
	w.store(r)

	return w, nil
}

// Registry returns the most recently loaded registry.
func (w *Watcher) Registry() *sidebar.Registry {
	return w.current.Load()
}

// Ready reports whether a registry is available.
func (w *Watcher) Ready(context.Context) error {
	if w.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}

// LastError returns the error of the latest reload, or nil if it succeeded.
func (w *Watcher) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Reload loads the file again. On failure the previous registry stays in place.
func (w *Watcher) Reload() error {
	r, err := Load(w.path)

	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()

	if err != nil {
		w.reloads.Increment("error")
		slog.Error("sidebar reload failed, keeping previous registry", "path", w.path, "error", err)
		return err
	}

	w.reloads.Increment("ok")
	w.store(r)
	slog.Info("sidebars reloaded", "path", w.path, "sidebars", r.Names())

	if w.onReload != nil {
		w.onReload(r)
	}
	return nil
}

func (w *Watcher) store(r *sidebar.Registry) {
	w.current.Store(r)
	sidebar.RecordDocuments(w.docs, r)
}

// Run watches the file's directory and reloads on changes until the context
// is canceled. Editors often replace files instead of writing them, so the
// directory is watched rather than the file itself.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	slog.Info("watching sidebars", "path", w.path, "debounce", w.debounce)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("sidebar file changed", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			_ = w.Reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("file watcher error", "error", err)
		}
	}
}

// Package watcher invalidates the dataset cache when the source file
// changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors and copy tools which replace the file through a rename are
// still noticed. Bursts of events are collapsed into one invalidation
// after a quiet period.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Trigger labels invalidations caused by the watcher in logs and metrics.
const Trigger = "watcher"

// DefaultDebounce is used when no quiet period is configured.
const DefaultDebounce = 500 * time.Millisecond

// Invalidator is implemented by services.CollectionService.
type Invalidator interface {
	Invalidate(ctx context.Context, trigger string)
}

// SourceWatcher watches one file.
type SourceWatcher struct {
	path     string
	debounce time.Duration
	target   Invalidator
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	fired    atomic.Int64
}

// New starts watching the directory of path. Events are only handled once
// Run is called.
func New(path string, debounce time.Duration, target Invalidator, logger *slog.Logger) (*SourceWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &SourceWatcher{
		path:     abs,
		debounce: debounce,
		target:   target,
		logger:   logger.With(slog.String("component", "source_watcher")),
		fsw:      fsw,
	}, nil
}

// Run handles events until ctx is done or the watcher is closed.
func (w *SourceWatcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.logger.Info("watching source file",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))

	var (
		timer *time.Timer
		fire  <-chan time.Time
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

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("source file event", slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.fired.Add(1)
			w.target.Invalidate(ctx, Trigger)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close stops the watcher; a running Run returns.
func (w *SourceWatcher) Close() error {
	return w.fsw.Close()
}

// Invalidations counts how often the watcher invalidated the cache.
func (w *SourceWatcher) Invalidations() int64 {
	return w.fired.Load()
}

// Path is the absolute path being watched.
func (w *SourceWatcher) Path() string {
	return w.path
}

func (w *SourceWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Create) ||
		event.Op.Has(fsnotify.Write) ||
		event.Op.Has(fsnotify.Rename) ||
		event.Op.Has(fsnotify.Remove)
}

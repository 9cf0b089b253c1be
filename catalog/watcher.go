package catalog

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// RebuildFunc builds a fresh index, typically by re-reading the same source
// list the initial build used.
type RebuildFunc func(ctx context.Context) (*Index, error)

// Watcher rebuilds and republishes the catalog when watched files change.
//
// Rebuilds are rate limited so that a burst of file events (editors and
// object-store syncers rarely write atomically) triggers one rebuild, not
// dozens. A failed rebuild keeps the previously published index serving.
type Watcher struct {
	fsw     *fsnotify.Watcher
	holder  *Holder
	rebuild RebuildFunc
	limiter *rate.Limiter
	logger  *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithRebuildLimit overrides the rebuild rate limit (default one per 2s,
// burst 1).
func WithRebuildLimit(l *rate.Limiter) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.limiter = l
		}
	}
}

// WithWatcherLogger sets the logger for rebuild outcomes.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a Watcher publishing through holder and watching the
// given paths (files or directories).
func NewWatcher(holder *Holder, rebuild RebuildFunc, paths []string, optFns ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		holder:  holder,
		rebuild: rebuild,
		limiter: rate.NewLimiter(rate.Every(2e9), 1),
		logger:  slog.Default(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(w)
		}
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Run processes file events until ctx is cancelled. It blocks; run it on its
// own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !w.limiter.Allow() {
				continue
			}
			w.doRebuild(ctx, event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.WarnContext(ctx, "catalog watch error", "error", err)
		}
	}
}

func (w *Watcher) doRebuild(ctx context.Context, trigger string) {
	x, err := w.rebuild(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "catalog rebuild failed, keeping current index",
			"trigger", trigger,
			"error", err,
		)
		return
	}
	old := w.holder.Swap(x)
	w.logger.InfoContext(ctx, "catalog rebuilt",
		"trigger", trigger,
		"descriptors", x.Len(),
		"version", x.Version(),
		"replaced_version", versionOf(old),
	)
}

func versionOf(x *Index) uint64 {
	if x == nil {
		return 0
	}
	return x.Version()
}

// Close stops the underlying file watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

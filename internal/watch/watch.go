// Package watch re-runs a file whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/stoutlist/internal/logging"
)

// DefaultDelay is the quiet period after the last change before a re-run.
const DefaultDelay = 100 * time.Millisecond

// Errors returned by the watcher.
var (
	ErrPathNotExist = errors.New("path does not exist")
	ErrIsDirectory  = errors.New("path is a directory")
)

// Func runs the watched file.
type Func func(ctx context.Context, path string) error

// Watcher re-runs one file.
type Watcher struct {
	path    string
	delay   time.Duration
	logger  *logging.Logger
	onError func(error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the quiet period that coalesces bursts of writes.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithErrorHandler is called with every error returned by a run and every
// error reported by the file system watcher.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// New creates a watcher for the regular file at path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrPathNotExist)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrIsDirectory)
	}

	w := &Watcher{
		path:    abs,
		delay:   DefaultDelay,
		logger:  logging.Nop(),
		onError: func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watch").WithField("path", abs)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run calls fn once, then again after every change to the file, until ctx is
// done. Errors from fn are reported and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors often save by renaming a new file over the old one.
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.run(ctx, fn)

	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("%s", ev.Op)
			timer.Reset(w.delay)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error: %v", err)
			w.onError(err)

		case <-timer.C:
			w.run(ctx, fn)
		}
	}
}

func (w *Watcher) run(ctx context.Context, fn Func) {
	start := time.Now()
	if err := fn(ctx, w.path); err != nil {
		w.logger.Warn("run failed after %s: %v", time.Since(start), err)
		w.onError(err)
		return
	}
	w.logger.Info("run finished in %s", time.Since(start))
}

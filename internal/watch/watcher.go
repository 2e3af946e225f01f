// Package watch reruns generation when Go sources change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for more changes before
// reporting a batch.
const DefaultDebounce = 200 * time.Millisecond

// Watcher monitors package directories for changes to Go source files.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	suffix   string
	logger   *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithSuffix sets the suffix of generated files, whose changes are ignored.
func WithSuffix(suffix string) Option {
	return func(w *Watcher) { w.suffix = suffix }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for the given directories.
func New(dirs []string, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fs:       fs,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}

		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	return w, nil
}

// Run calls onChange with the sorted set of changed files once no further
// change arrived for the debounce delay. It returns when ctx is done or the
// underlying watcher fails. Errors from onChange are logged, not returned.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, files []string) error) error {
	defer w.fs.Close()

	pending := make(map[string]struct{})

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))

			pending[event.Name] = struct{}{}

			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}

			return fmt.Errorf("watching files: %w", err)

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}

			sort.Strings(files)
			clear(pending)

			if err := onChange(ctx, files); err != nil {
				w.logger.Error("handling file changes", zap.Strings("files", files), zap.Error(err))
			}
		}
	}
}

// relevant reports whether an event can change the scan: a write, create,
// remove or rename of a non-test Go file that is not generated output or
// hidden from the go tool.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	return IsSource(event.Name, w.suffix)
}

// IsSource reports whether path is a Go source file the analyzer reads.
func IsSource(path, suffix string) bool {
	base := filepath.Base(path)

	switch {
	case !strings.HasSuffix(base, ".go"):
		return false
	case strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_"):
		return false
	case strings.HasSuffix(base, "_test.go"):
		return false
	case suffix != "" && strings.HasSuffix(base, suffix):
		return false
	default:
		return true
	}
}

// Package fsnotify re-extracts widget fragments when their build output
// changes on disk.
package fsnotify

import (
	"context"
	"errors"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fwojciec/inlay"
	"github.com/fwojciec/inlay/fs"
)

// DefaultDebounce is how long a widget's build output must stay quiet before
// it is extracted again.
const DefaultDebounce = 300 * time.Millisecond

// Watcher runs an extraction for every widget, then again each time the
// widget's build root changes. Bundlers rewrite many files per rebuild, so
// events are collected until the root has been quiet for Debounce.
type Watcher struct {
	Extractor inlay.Extractor
	Logger    *slog.Logger
	Debounce  time.Duration

	// OnResult, if set, is called after every successful extraction.
	OnResult func(*inlay.Result)
}

// NewWatcher creates a new Watcher.
func NewWatcher(ex inlay.Extractor, logger *slog.Logger) *Watcher {
	return &Watcher{
		Extractor: ex,
		Logger:    logger,
		Debounce:  DefaultDebounce,
	}
}

// Watch blocks until ctx is cancelled. Extraction failures are logged and do
// not stop the watcher. It returns an error only when a widget is invalid or
// its root cannot be watched.
func (w *Watcher) Watch(ctx context.Context, widgets []*inlay.Widget) error {
	cfg := &inlay.Config{Widgets: widgets}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return inlay.Errorf(inlay.EINTERNAL, "failed to create watcher: %v", err)
	}
	defer fsw.Close()

	s := &session{
		Watcher: w,
		fsw:     fsw,
		widgets: widgets,
		pending: make(map[int]time.Time),
	}
	for _, wd := range widgets {
		if err := s.addRecursive(wd.Root); err != nil {
			return err
		}
	}

	for i := range widgets {
		s.extract(ctx, i)
	}
	w.logger().Info("watching", "widgets", len(widgets), "debounce", w.debounce())

	return s.run(ctx)
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce <= 0 {
		return DefaultDebounce
	}
	return w.Debounce
}

// session is the state of one Watch call.
type session struct {
	*Watcher
	fsw     *fsnotify.Watcher
	widgets []*inlay.Widget

	// pending maps widget index to the time of its latest change.
	pending map[int]time.Time
}

func (s *session) run(ctx context.Context) error {
	delay := s.debounce()
	ticker := time.NewTicker(delay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-s.fsw.Events:
			if !ok {
				return nil
			}
			s.handle(event)

		case err, ok := <-s.fsw.Errors:
			if !ok {
				return nil
			}
			s.logger().Error("watch", "err", err)

		case now := <-ticker.C:
			s.flush(ctx, now.Add(-delay))
		}
	}
}

// handle records which widgets an event touches.
func (s *session) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := s.addRecursive(path); err != nil {
				s.logger().Warn("failed to watch new directory", "path", path, "err", err)
			}
		}
	}

	for i, wd := range s.widgets {
		if !within(wd.Root, path) || isOwnOutput(wd, path) {
			continue
		}
		s.pending[i] = time.Now()
		s.logger().Debug("change detected", "widget", wd.Label(), "path", path, "op", event.Op.String())
	}
}

// flush extracts every widget whose last change happened before cutoff.
func (s *session) flush(ctx context.Context, cutoff time.Time) {
	var ready []int
	for i, at := range s.pending {
		if !at.After(cutoff) {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	for _, i := range ready {
		if ctx.Err() != nil {
			return
		}
		delete(s.pending, i)
		s.extract(ctx, i)
	}
}

func (s *session) extract(ctx context.Context, i int) {
	res, err := s.Extractor.Extract(ctx, s.widgets[i])
	if err != nil {
		if ctx.Err() == nil {
			s.logger().Error("rebuild failed", "widget", s.widgets[i].Label(), "err", err)
		}
		return
	}
	if s.OnResult != nil {
		s.OnResult(res)
	}
}

func (s *session) addRecursive(root string) error {
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return s.fsw.Add(path)
	})
	if errors.Is(err, iofs.ErrNotExist) {
		return inlay.Errorf(inlay.EMISSING, "build directory %q not found", root)
	} else if err != nil {
		return inlay.Errorf(inlay.EINTERNAL, "failed to watch %q: %v", root, err)
	}
	return nil
}

func within(root, path string) bool {
	root = filepath.Clean(root)
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// isOwnOutput reports whether path is the widget's fragment or one of the
// temporary files written while replacing it.
func isOwnOutput(wd *inlay.Widget, path string) bool {
	out := wd.OutputPath()
	if path == out {
		return true
	}
	return filepath.Dir(path) == filepath.Dir(out) &&
		strings.HasPrefix(filepath.Base(path), fs.TempPrefix(out))
}

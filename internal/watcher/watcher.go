// Package watcher reports on-disk drift of the corpus roots after the index has been built.
// The index is write-once, so the watcher only marks the corpus stale and logs; it never re-indexes.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// StaleMessage is logged once per burst of changes.
const StaleMessage = "corpus changed on disk; restart to re-index"

// ErrRootMissing is returned by Start when a corpus root does not exist.
var ErrRootMissing = errors.New("corpus root does not exist")

// Status is a snapshot of observed drift.
type Status struct {
	Stale      bool      `json:"stale"`
	Changes    int       `json:"changes"`
	LastPath   string    `json:"last_path,omitempty"`
	LastChange time.Time `json:"last_change,omitempty"`
}

// Watcher watches corpus roots recursively and records drift.
type Watcher struct {
	roots    []string
	resolved []string
	onChange func(Status)
	debounce time.Duration
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	pending  int
	status   Status
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger used for the drift warning and debug events.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long a burst of events is coalesced before the warning is logged.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnChange registers a callback invoked once per debounced burst.
func WithOnChange(fn func(Status)) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// NewWatcher creates a watcher over roots. Call Start to begin watching.
func NewWatcher(roots []string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		roots:    append([]string(nil), roots...),
		debounce: defaultDebounce,
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Start adds every directory under the roots to the watch list and runs until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fw
	w.resolved = w.resolved[:0]
	for _, root := range w.roots {
		dir, err := resolveRoot(root)
		if err == nil {
			err = w.addTreeLocked(dir)
		}
		if err != nil {
			_ = fw.Close()
			w.watcher = nil
			w.mu.Unlock()
			return err
		}
		w.resolved = append(w.resolved, dir)
	}
	w.started = true
	w.mu.Unlock()

	w.logger.Debug("watcher starting", zap.Strings("roots", w.roots), zap.Duration("debounce", w.debounce))
	go w.run(ctx, fw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if !w.underRoot(ev.Name) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	if ev.Has(fsnotify.Create) {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
			w.mu.Lock()
			if w.watcher != nil {
				if err := w.addTreeLocked(ev.Name); err != nil {
					w.logger.Debug("watcher failed to add directory", zap.String("path", ev.Name), zap.Error(err))
				}
			}
			w.mu.Unlock()
		}
	}
	w.markStale(ev.Name)
}

func (w *Watcher) markStale(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.Stale = true
	w.status.Changes++
	w.status.LastPath = path
	w.status.LastChange = time.Now()
	w.pending++
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	w.timer = nil
	n := w.pending
	w.pending = 0
	st := w.status
	onChange := w.onChange
	w.mu.Unlock()
	if n == 0 {
		return
	}
	w.logger.Warn(StaleMessage, zap.Int("events", n), zap.String("last_path", st.LastPath))
	if onChange != nil {
		onChange(st)
	}
}

// resolveRoot follows a symlinked root so the walk below starts at a directory.
func resolveRoot(root string) (string, error) {
	dir, err := filepath.EvalSymlinks(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.Join(ErrRootMissing, err)
		}
		return "", err
	}
	return dir, nil
}

// addTreeLocked watches dir and every directory below it. Symlinked
// directories are not followed, matching the corpus loader.
func (w *Watcher) addTreeLocked(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrRootMissing, err)
		}
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "watch", Path: dir, Err: errors.New("not a directory")}
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) underRoot(path string) bool {
	clean := filepath.Clean(path)
	for _, root := range w.resolved {
		if inDir(root, clean) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Status returns a snapshot of the observed drift.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Roots returns a copy of the watched roots.
func (w *Watcher) Roots() []string {
	return append([]string(nil), w.roots...)
}

// Stop stops watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
			w.watcher = nil
		}
	})
}

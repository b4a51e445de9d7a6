// Package watch is Snipe's optional file-watch mode, adapted from lci's
// indexing.FileWatcher/DebouncedRebuilder pair: fsnotify delivers raw
// filesystem events, and a per-file debounce timer coalesces a burst of
// them (an editor's autosave, a formatter rewrite) into one graph refresh.
package watch

import (
	"io/fs"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/snipe-dev/snipe/internal/config"
	"github.com/snipe-dev/snipe/internal/debug"
	"github.com/snipe-dev/snipe/internal/types"
)

// Refresher is the subset of *graph.Graph the watcher needs; kept as an
// interface so tests can substitute a recorder.
type Refresher interface {
	RefreshFile(path string) error
}

type Watcher struct {
	fsw       *fsnotify.Watcher
	refresher Refresher
	debounce  time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer

	done chan struct{}
}

// New starts watching root's directory tree (one fsnotify watch per
// directory, since fsnotify is not recursive) and begins dispatching
// debounced RefreshFile calls to refresher.
func New(root string, cfg *config.Config, refresher Refresher) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:       fsw,
		refresher: refresher,
		debounce:  time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		timers:    make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}

	if err := w.addTree(root, cfg); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) addTree(root string, cfg *config.Config) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(config.DefaultIgnoreDirs, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			debug.Warn("watch", "failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Warn("watch", "fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	ext := filepath.Ext(ev.Name)
	if _, ok := types.LanguageForPath(ext); !ok {
		return
	}
	w.schedule(ev.Name)
}

// schedule resets path's debounce timer, coalescing a burst of events for
// the same file into a single refresh, mirroring DebouncedRebuilder's
// per-key timer-reset pattern.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		if err := w.refresher.RefreshFile(path); err != nil {
			debug.Warn("watch", "refresh failed for %s: %v", path, err)
		}
	})
}

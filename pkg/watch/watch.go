// Package watch reloads a build description whenever it changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/poltergeist/buildscript/pkg/buildconfig"
	"github.com/poltergeist/buildscript/pkg/logger"
)

// DefaultDebounce is the quiet period before a change is reloaded.
const DefaultDebounce = 300 * time.Millisecond

// ErrRemoved is reported when the watched file disappears.
var ErrRemoved = errors.New("build file was removed")

// ChangeFunc receives the reloaded config, or the error that prevented
// loading it. Calls are serialized.
type ChangeFunc func(cfg *buildconfig.Config, err error)

// EventType classifies a file system event.
type EventType string

const (
	EventModified EventType = "modified"
	EventCreated  EventType = "created"
	EventRemoved  EventType = "removed"
)

// Watcher watches one build file.
type Watcher struct {
	path     string
	logger   logger.Logger
	onChange ChangeFunc
	debounce time.Duration

	mu            sync.Mutex
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	last          fileStamp
	ctx           context.Context
	cancel        context.CancelFunc
	isWatching    bool
	done          chan struct{}

	// handleMu serializes ChangeFunc calls and lets Stop wait for one in
	// flight.
	handleMu sync.Mutex
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// New creates a watcher for path. A nil logger discards log output.
func New(path string, log logger.Logger, onChange ChangeFunc) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		path:     path,
		logger:   log,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// SetDebounce changes the quiet period. It has no effect once watching.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isWatching && d > 0 {
		w.debounce = d
	}
}

// Start begins watching. The directory holding the file is watched so
// editors that replace the file on save are followed.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isWatching {
		return fmt.Errorf("already watching %s", w.path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch build file directory: %w", err)
	}

	w.watcher = watcher
	w.last, _ = stamp(w.path)
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	w.isWatching = true

	go w.loop(w.ctx, watcher, w.done)

	w.logger.Debug("Started watching build file", logger.WithField("path", w.path))
	return nil
}

// Stop stops watching and waits for a reload in progress to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.isWatching {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	err := w.watcher.Close()
	done := w.done
	w.watcher = nil
	w.isWatching = false
	w.mu.Unlock()

	<-done
	// Wait for a running handler.
	w.handleMu.Lock()
	w.handleMu.Unlock()

	w.logger.Debug("Stopped watching build file", logger.WithField("path", w.path))
	if err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	return nil
}

// IsWatching reports whether the watcher is running.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isWatching
}

// Trigger reloads the file now, even if it looks unchanged.
func (w *Watcher) Trigger() {
	w.handleMu.Lock()
	defer w.handleMu.Unlock()
	w.handle(EventModified, true)
}

func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Build file watcher panic recovered", logger.WithField("panic", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.isBuildFileEvent(event.Name) {
				continue
			}
			w.logger.Debug("Build file event received", logger.WithField("event", event.String()))
			w.schedule(eventType(event.Op))

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Build file watcher error", logger.WithField("error", err))
		}
	}
}

func (w *Watcher) isBuildFileEvent(name string) bool {
	base := filepath.Base(w.path)
	event := filepath.Base(name)
	if event == base {
		return true
	}
	// Editors often save through a temporary sibling and rename it.
	return strings.HasPrefix(event, base) && strings.HasSuffix(event, ".tmp")
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op.Has(fsnotify.Write):
		return EventModified
	case op.Has(fsnotify.Create):
		return EventCreated
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return EventRemoved
	default:
		return EventModified
	}
}

func (w *Watcher) schedule(t EventType) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isWatching {
		return
	}
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	ctx := w.ctx
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		w.handleMu.Lock()
		defer w.handleMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.handle(t, false)
	})
}

// handle reloads the file. Callers hold handleMu.
func (w *Watcher) handle(t EventType, force bool) {
	w.logger.Debug("Processing build file change", logger.WithField("event", string(t)))

	st, err := stamp(w.path)
	if errors.Is(err, os.ErrNotExist) {
		w.onChange(nil, fmt.Errorf("%s: %w", w.path, ErrRemoved))
		return
	}
	if err != nil {
		w.onChange(nil, err)
		return
	}

	w.mu.Lock()
	if !force && st == w.last {
		w.mu.Unlock()
		w.logger.Debug("Build file not modified, skipping reload")
		return
	}
	w.last = st
	w.mu.Unlock()

	cfg, err := buildconfig.Load(w.path)
	if err != nil {
		w.logger.Error("Failed to reload build file", logger.WithField("error", err))
		w.onChange(nil, err)
		return
	}

	w.logger.Info("Build file reloaded", logger.WithField("path", w.path))
	w.onChange(cfg, nil)
}

func stamp(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}, nil
}

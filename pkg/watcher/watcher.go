package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xmhha/marker-watch/pkg/logger"
	"github.com/0xmhha/marker-watch/pkg/pathfilter"
)

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger logger.Logger
	filter *pathfilter.Filter
	config Config

	root string

	events chan Event
	errors chan error

	mu       sync.RWMutex
	running  bool
	closed   bool
	stopChan chan struct{}

	// Debouncing state.
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	failureCount int
}

// New creates a new recursive file system watcher.
//
// Parameters:
//   - cfg: Watcher configuration
//   - filter: Exclusion rule applied to every path relative to the root
//   - log: Logger instance
//
// Returns:
//   - Configured Watcher
//   - Error if the underlying notification mechanism is unavailable
func New(cfg Config, filter *pathfilter.Filter, log logger.Logger) (Watcher, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &watcher{
		fsw:            fsw,
		logger:         log,
		filter:         filter,
		config:         cfg,
		events:         make(chan Event, 100),
		errors:         make(chan error, 10),
		stopChan:       make(chan struct{}),
		debounceTimers: make(map[string]*time.Timer),
	}

	log.Debug("file watcher created",
		"debounce_interval", cfg.DebounceInterval,
		"failure_threshold", cfg.FailureThreshold)

	return w, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, root string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.running = true
	w.mu.Unlock()

	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve watch root %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat watch root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}

	w.root = abs

	if err := w.addRecursive(abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	w.logger.Info("watcher started", "root", abs)

	go w.processEvents(ctx)

	return nil
}

// Stop implements Watcher.Stop.
func (w *watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.running {
		return ErrNotStarted
	}

	close(w.stopChan)
	w.running = false

	w.logger.Info("watcher stopped")
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	if w.running {
		close(w.stopChan)
		w.running = false
	}

	close(w.events)
	close(w.errors)

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = nil
	w.debounceMu.Unlock()

	if err := w.fsw.Close(); err != nil {
		w.logger.Error("failed to close fsnotify watcher", "error", err)
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Debug("watcher closed")
	return nil
}

// processEvents handles events from fsnotify.
func (w *watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("event processing stopped", "reason", "context cancelled")
			return

		case <-w.stopChan:
			w.logger.Info("event processing stopped", "reason", "stop signal")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.logger.Warn("fsnotify events channel closed")
				return
			}

			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.logger.Warn("fsnotify errors channel closed")
				return
			}

			w.handleError(err)
		}
	}
}

// handleEvent filters, classifies, and debounces a single fsnotify event.
func (w *watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		w.logger.Debug("event outside watch root, skipping", "path", event.Name)
		return
	}

	if !w.filter.Accept(rel) {
		w.logger.Debug("path excluded by filter", "path", rel)
		return
	}

	var op Op
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		op = OpCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		op = OpWrite
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		op = OpRemove
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		op = OpRename
	default:
		// Chmod and friends never change content.
		return
	}

	// A directory created while watching must itself be subscribed, with
	// the exclusion rule re-applied before descending into it. The filter
	// check above already rejected excluded names.
	if op == OpCreate {
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			if addErr := w.addRecursive(event.Name); addErr != nil {
				w.logger.Warn("failed to watch new directory",
					"path", event.Name,
					"error", addErr)
			}
			return
		}
	}

	w.debounceEvent(Event{
		Path:      event.Name,
		Op:        op,
		Timestamp: time.Now(),
	})
}

// debounceEvent delays delivery until the path has been quiet for the
// configured interval; the last event in a burst wins.
func (w *watcher) debounceEvent(event Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[event.Path]; exists {
		timer.Stop()
	}

	w.debounceTimers[event.Path] = time.AfterFunc(w.config.DebounceInterval, func() {
		w.mu.RLock()
		closed := w.closed
		w.mu.RUnlock()

		if !closed {
			w.events <- event
		}

		w.debounceMu.Lock()
		if w.debounceTimers != nil {
			delete(w.debounceTimers, event.Path)
		}
		w.debounceMu.Unlock()
	})
}

// handleError counts watch-subsystem errors and escalates past the
// failure threshold.
func (w *watcher) handleError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.failureCount++

	w.logger.Error("fsnotify error",
		"error", err,
		"failure_count", w.failureCount)

	out := err
	if w.failureCount >= w.config.FailureThreshold {
		w.logger.Error("watch subsystem failure threshold reached",
			"threshold", w.config.FailureThreshold)
		out = fmt.Errorf("%w: %v", ErrWatchFailed, err)
	}

	select {
	case w.errors <- out:
	default:
		w.logger.Warn("error channel full, dropping error")
	}
}

// addRecursive subscribes to dir and every non-excluded directory below it.
func (w *watcher) addRecursive(dir string) error {
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to add path: %w", err)
	}

	w.logger.Debug("added watch path", "path", dir)

	return filepath.Walk(dir, func(subPath string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("error walking path",
				"path", subPath,
				"error", err)
			return nil // Skip but continue walking.
		}

		if !info.IsDir() {
			return nil
		}

		if subPath == dir {
			return nil
		}

		rel, relErr := filepath.Rel(w.root, subPath)
		if relErr != nil {
			return nil
		}

		// Excluded directories are never descended into, so their
		// contents never generate events.
		if !w.filter.Accept(rel) {
			w.logger.Debug("directory excluded from watch", "path", rel)
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(subPath); addErr != nil {
			w.logger.Warn("failed to add subdirectory",
				"path", subPath,
				"error", addErr)
			return nil // Skip but continue walking.
		}

		w.logger.Debug("added watch subdirectory", "path", subPath)
		return nil
	})
}

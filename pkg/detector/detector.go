// Package detector runs the change-detection protocol: it consumes file
// system events, re-reads changed files, and hands marker hits to the
// dispatch controller.
//
// Every qualifying event runs the full protocol on its own goroutine so a
// slow read for one file never delays detection for another. File content
// is treated as stale between events; each event triggers a fresh full
// read, never a cached or incremental one.
package detector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/0xmhha/marker-watch/pkg/logger"
	"github.com/0xmhha/marker-watch/pkg/marker"
	"github.com/0xmhha/marker-watch/pkg/pathfilter"
	"github.com/0xmhha/marker-watch/pkg/watcher"
)

// Dispatcher launches external work for a detected marker.
type Dispatcher interface {
	Dispatch(relPath string)
}

// Config contains detector configuration.
type Config struct {
	// Root is the watch root. Dispatched paths are relative to it.
	Root string

	// MaxFileSize is the largest file the detector will scan.
	// Default: 10 MB.
	MaxFileSize int64
}

// Detector owns the watch subscription and the per-event protocol.
type Detector struct {
	config     Config
	watcher    watcher.Watcher
	filter     *pathfilter.Filter
	dispatcher Dispatcher
	logger     logger.Logger
}

// New creates a detector.
//
// Parameters:
//   - cfg: Detector configuration; Root is required
//   - w: Watch subscription over cfg.Root
//   - f: Exclusion rule, shared with the watcher
//   - d: Dispatch controller for marker hits
//   - log: Logger instance
func New(cfg Config, w watcher.Watcher, f *pathfilter.Filter, d Dispatcher, log logger.Logger) (*Detector, error) {
	if cfg.Root == "" {
		return nil, ErrNoRoot
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}

	abs, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}
	cfg.Root = abs

	return &Detector{
		config:     cfg,
		watcher:    w,
		filter:     f,
		dispatcher: d,
		logger:     log,
	}, nil
}

// Run subscribes to the watch root and processes events until ctx is
// cancelled or the watch subsystem fails irrecoverably.
//
// Returns nil on cancellation. Returns the watch error when the
// underlying notification mechanism gives up; the caller is expected to
// treat that as fatal.
func (d *Detector) Run(ctx context.Context) error {
	if err := d.watcher.Start(ctx, d.config.Root); err != nil {
		return fmt.Errorf("failed to start watching %s: %w", d.config.Root, err)
	}

	for {
		select {
		case <-ctx.Done():
			if err := d.watcher.Stop(); err != nil && !errors.Is(err, watcher.ErrNotStarted) {
				d.logger.Warn("failed to stop watcher", "error", err)
			}
			d.logger.Info("detector stopped")
			return nil

		case ev, ok := <-d.watcher.Events():
			if !ok {
				return nil
			}
			if !ev.Op.Actionable() {
				continue
			}

			// In-flight handlers are not joined on shutdown; reads in
			// progress complete or fail on their own.
			go d.handleEvent(ev)

		case err, ok := <-d.watcher.Errors():
			if !ok {
				return nil
			}
			if errors.Is(err, watcher.ErrWatchFailed) {
				return err
			}
			d.logger.Warn("watch error", "error", err)
		}
	}
}

// handleEvent runs the per-event protocol for a single actionable event.
//
// Every early return is a discarded event: detection for the rest of the
// tree continues regardless of what happens to one file.
func (d *Detector) handleEvent(ev watcher.Event) {
	log := d.logger.With("path", ev.Path)

	info, err := os.Stat(ev.Path)
	if err != nil {
		// Deleted between event and read; common and harmless.
		log.Debug("file gone before read, skipping", "error", err)
		return
	}
	if info.IsDir() {
		return
	}
	if info.Size() > d.config.MaxFileSize {
		log.Debug("file too large, skipping", "size", info.Size())
		return
	}

	rel, err := filepath.Rel(d.config.Root, ev.Path)
	if err != nil {
		log.Debug("path outside root, skipping", "error", err)
		return
	}
	if !d.filter.Accept(rel) {
		log.Debug("excluded by filter")
		return
	}

	data, err := os.ReadFile(ev.Path)
	if err != nil {
		log.Warn("cannot read file, skipping", "error", err)
		return
	}
	if !utf8.Valid(data) {
		log.Debug("not a text file, skipping")
		return
	}

	m := marker.Scan(string(data))
	if !m.Found {
		return
	}

	log.Info("marker found",
		"file", rel,
		"op", ev.Op.String(),
		"instruction", m.Instruction)

	d.dispatcher.Dispatch(rel)
}

// Package watcher provides recursive file system monitoring for a single
// watch root.
//
// It uses fsnotify to subscribe to every non-excluded directory beneath
// the root, re-evaluates the exclusion rule for directories created while
// watching, and debounces rapid event bursts per path.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{}, pathfilter.New("."), logger.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, "/vault"); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("%s: %s\n", event.Op, event.Path)
//	}
package watcher

import (
	"context"
	"time"
)

// Op describes a file operation type.
type Op uint32

// File operation types.
const (
	OpCreate Op = 1 << iota // File or directory created
	OpWrite                 // File modified
	OpRemove                // File deleted
	OpRename                // File renamed/moved
)

// String returns a human-readable operation name.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Actionable reports whether the operation can make a marker appear.
//
// Only creations and modifications qualify; removals and renames leave
// nothing to scan.
func (op Op) Actionable() bool {
	return op == OpCreate || op == OpWrite
}

// Event represents a file system event.
type Event struct {
	// Path is the absolute path of the entry that triggered the event.
	Path string

	// Op is the operation that triggered the event.
	Op Op

	// Timestamp is when the event was observed.
	Timestamp time.Time
}

// Watcher provides recursive file system monitoring.
type Watcher interface {
	// Start subscribes to the watch root and begins delivering events.
	//
	// The root must exist and be a directory. Subdirectories rejected by
	// the path filter are never descended into. Start returns once the
	// subscription is established; events are delivered on Events().
	Start(ctx context.Context, root string) error

	// Stop gracefully shuts down event delivery.
	Stop() error

	// Events returns the channel for receiving file system events.
	//
	// Events are debounced per path: only the last event within the
	// configured quiet window is delivered.
	Events() <-chan Event

	// Errors returns the channel for receiving watcher errors.
	//
	// Transient errors are delivered as-is. Once the failure threshold is
	// reached, ErrWatchFailed is delivered and the watch should be
	// considered dead.
	Errors() <-chan error

	// Close closes the watcher and releases resources.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval is the quiet window before an event is emitted.
	// Multiple events for the same path within this interval collapse
	// into the last one. Default: 100ms.
	DebounceInterval time.Duration

	// FailureThreshold is the number of watch-subsystem errors after
	// which the watch is reported as failed. Default: 5.
	FailureThreshold int
}

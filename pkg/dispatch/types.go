// Package dispatch launches the external claude command in response to
// detected markers.
//
// Dispatches are fire-and-forget: Dispatch returns as soon as the process
// is handed to the OS scheduler, there is no concurrency cap and no
// backpressure. A detached reaper goroutine waits on each child only to
// release its resources, log the outcome, and complete the history
// record; nothing feeds back into detection.
package dispatch

import "time"

// Controller launches external work for detected markers.
type Controller interface {
	// Dispatch launches the external command for the file at relPath
	// (relative to the watch root). Non-blocking; launch failures are
	// logged and never propagated.
	Dispatch(relPath string)

	// Count returns the number of dispatches attempted so far.
	Count() int64
}

// Config contains dispatch configuration.
type Config struct {
	// Root is the watch root; it becomes the working directory of every
	// spawned process.
	Root string

	// Binary is an explicit path to the claude binary. Empty means
	// auto-discover via PATH and ExtraPaths.
	Binary string

	// ExtraPaths are directories searched for the binary and appended to
	// the PATH of spawned processes.
	ExtraPaths []string
}

// Record describes one dispatched process in the history store.
type Record struct {
	// ID is the launch time in unix nanoseconds; it doubles as the
	// store key.
	ID int64 `json:"id"`

	// RelPath is the triggering file, relative to the watch root.
	RelPath string `json:"rel_path"`

	// Instruction is the sentence passed to the external command.
	Instruction string `json:"instruction"`

	// PID of the spawned process.
	PID int `json:"pid"`

	// StartedAt is the launch time.
	StartedAt time.Time `json:"started_at"`

	// Completed reports whether the process has been reaped.
	Completed bool `json:"completed"`

	// ExitCode of the completed process; meaningless until Completed.
	ExitCode int `json:"exit_code"`

	// Duration from launch to exit; meaningless until Completed.
	Duration time.Duration `json:"duration"`
}

// HistoryStore persists dispatch records.
type HistoryStore interface {
	// Put stores or replaces the record keyed by its ID.
	Put(rec Record) error

	// Recent returns up to limit records, newest first.
	Recent(limit int) ([]Record, error)

	// Close releases store resources.
	Close() error
}

package watcher

import "errors"

// Common errors returned by the watcher.
var (
	// ErrWatcherClosed is returned when attempting to use a closed watcher.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrAlreadyStarted is returned when Start is called on a running watcher.
	ErrAlreadyStarted = errors.New("watcher already started")

	// ErrNotStarted is returned when Stop is called on a non-running watcher.
	ErrNotStarted = errors.New("watcher not started")

	// ErrNotADirectory is returned when the watch root is not a directory.
	ErrNotADirectory = errors.New("watch root is not a directory")

	// ErrWatchFailed is delivered on the error channel when the underlying
	// notification mechanism has failed past the configured threshold.
	ErrWatchFailed = errors.New("watch subsystem failed")
)

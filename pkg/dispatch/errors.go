package dispatch

import "errors"

// Common errors returned by the dispatch package.
var (
	// ErrNoRoot is returned when the controller is created without a
	// watch root.
	ErrNoRoot = errors.New("dispatch root not specified")

	// ErrBinaryNotFound is returned when the claude binary cannot be
	// located in PATH or any of the configured extra paths.
	ErrBinaryNotFound = errors.New("claude binary not found")

	// ErrHistoryClosed is returned when using a closed history store.
	ErrHistoryClosed = errors.New("history store is closed")
)

package detector

import "errors"

// Common errors returned by the detector.
var (
	// ErrNoRoot is returned when the detector is created without a
	// watch root.
	ErrNoRoot = errors.New("watch root not specified")
)

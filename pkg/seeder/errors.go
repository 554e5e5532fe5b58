package seeder

import "errors"

// Common errors returned by the seeder.
var (
	// ErrMissingToken is returned when the configured marker text does
	// not contain the marker token.
	ErrMissingToken = errors.New("marker text does not contain the marker token")

	// ErrNotADirectory is returned when the seed root is not a directory.
	ErrNotADirectory = errors.New("seed root is not a directory")
)

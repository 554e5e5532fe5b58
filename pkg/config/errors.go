package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrInvalidDebounceInterval is returned when the debounce interval is <= 0.
	ErrInvalidDebounceInterval = errors.New("invalid debounce interval: must be > 0")

	// ErrInvalidMaxFileSize is returned when the max file size is <= 0.
	ErrInvalidMaxFileSize = errors.New("invalid max file size: must be > 0")

	// ErrInvalidFailureThreshold is returned when the failure threshold is <= 0.
	ErrInvalidFailureThreshold = errors.New("invalid failure threshold: must be > 0")

	// ErrInvalidSeedInterval is returned when the seed interval is <= 0.
	ErrInvalidSeedInterval = errors.New("invalid seed interval: must be > 0")

	// ErrMarkerTextMissingToken is returned when the seed marker text does
	// not contain the marker token.
	ErrMarkerTextMissingToken = errors.New("seed marker text does not contain the marker token")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when the config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when the config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)

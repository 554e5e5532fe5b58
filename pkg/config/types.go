// Package config provides configuration management for marker-watch.
//
// Configuration is loaded with the following precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file
// 3. Default values
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("debounce: %v\n", cfg.Watch.DebounceInterval)
package config

import (
	"time"

	"github.com/0xmhha/marker-watch/pkg/marker"
)

// Config represents the complete application configuration.
//
// Invariants:
// - Watch.DebounceInterval must be > 0
// - Watch.MaxFileSize must be > 0
// - Watch.FailureThreshold must be > 0
// - Seed.Interval must be > 0
// - Seed.MarkerText must contain the marker token.
type Config struct {
	// Watch settings for the change detector
	Watch WatchConfig `yaml:"watch"`

	// Dispatch settings for launching the claude CLI
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Seed settings for the companion marker seeder
	Seed SeedConfig `yaml:"seed"`

	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// WatchConfig contains change-detection settings.
type WatchConfig struct {
	// Quiet window for coalescing rapid events on the same path
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Files larger than this are never scanned for the marker
	MaxFileSize int64 `yaml:"max_file_size"`

	// Consecutive watch-subsystem failures before giving up
	FailureThreshold int `yaml:"failure_threshold"`
}

// DispatchConfig contains external command settings.
type DispatchConfig struct {
	// Explicit path to the claude binary; empty means auto-discover
	Binary string `yaml:"binary"`

	// Directories appended to PATH for the spawned process and searched
	// when auto-discovering the binary
	ExtraPaths []string `yaml:"extra_paths"`
}

// SeedConfig contains marker-seeding settings.
type SeedConfig struct {
	// Time between seeding passes
	Interval time.Duration `yaml:"interval"`

	// Text appended to the selected file; must contain the marker token
	MarkerText string `yaml:"marker_text"`

	// Files whose name contains any of these substrings are never seeded
	SkipNameParts []string `yaml:"skip_name_parts"`

	// Files whose content contains any of these words are never seeded
	SkipWords []string `yaml:"skip_words"`

	// Delete files whose content is blank instead of seeding them
	DeleteEmpty bool `yaml:"delete_empty"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the BoltDB dispatch history file
	HistoryPath string `yaml:"history_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
//
// Thread-safety: read-only and safe for concurrent use.
func (c *Config) Validate() error {
	if c.Watch.DebounceInterval <= 0 {
		return ErrInvalidDebounceInterval
	}
	if c.Watch.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}
	if c.Watch.FailureThreshold <= 0 {
		return ErrInvalidFailureThreshold
	}

	if c.Seed.Interval <= 0 {
		return ErrInvalidSeedInterval
	}
	if !marker.Contains(c.Seed.MarkerText) {
		return ErrMarkerTextMissingToken
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
//
// The defaults mirror the reference behavior: 100ms debounce, 10 MB scan
// cap, 5 minute seeding interval.
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			DebounceInterval: 100 * time.Millisecond,
			MaxFileSize:      10 * 1024 * 1024,
			FailureThreshold: 5,
		},
		Dispatch: DispatchConfig{
			Binary:     "",
			ExtraPaths: defaultClaudePaths(),
		},
		Seed: SeedConfig{
			Interval:      5 * time.Minute,
			MarkerText:    "Please update this note. " + marker.Token,
			SkipNameParts: []string{"Prompt", "Goal"},
			SkipWords:     []string{"Leitfragen"},
			DeleteEmpty:   true,
		},
		Storage: StorageConfig{
			HistoryPath: defaultHistoryPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)
}

type loader struct {
	configPath string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for a config file in:
// 1. ./config.yaml (current directory)
// 2. ~/.config/marker-watch/config.yaml.
func NewLoader(configPath string) Loader {
	return &loader{configPath: configPath}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	configPath := l.configPath
	if configPath == "" {
		configPath = l.findConfigFile()
	}

	if configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// An explicitly requested file must load; a discovered one
			// may be skipped in favor of defaults.
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = l.mergeConfigs(cfg, fileCfg)
		}
	}

	cfg = l.applyEnvVars(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// findConfigFile searches standard locations, returning "" if none exist.
func (l *loader) findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		defaultConfigPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// mergeConfigs merges file configuration into default configuration.
//
// File values override defaults, but only if they are non-zero.
func (l *loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Watch.DebounceInterval > 0 {
		result.Watch.DebounceInterval = override.Watch.DebounceInterval
	}
	if override.Watch.MaxFileSize > 0 {
		result.Watch.MaxFileSize = override.Watch.MaxFileSize
	}
	if override.Watch.FailureThreshold > 0 {
		result.Watch.FailureThreshold = override.Watch.FailureThreshold
	}

	if override.Dispatch.Binary != "" {
		result.Dispatch.Binary = override.Dispatch.Binary
	}
	if len(override.Dispatch.ExtraPaths) > 0 {
		result.Dispatch.ExtraPaths = override.Dispatch.ExtraPaths
	}

	if override.Seed.Interval > 0 {
		result.Seed.Interval = override.Seed.Interval
	}
	if override.Seed.MarkerText != "" {
		result.Seed.MarkerText = override.Seed.MarkerText
	}
	if len(override.Seed.SkipNameParts) > 0 {
		result.Seed.SkipNameParts = override.Seed.SkipNameParts
	}
	if len(override.Seed.SkipWords) > 0 {
		result.Seed.SkipWords = override.Seed.SkipWords
	}
	// DeleteEmpty is a bool, so the override value always applies.
	result.Seed.DeleteEmpty = override.Seed.DeleteEmpty

	if override.Storage.HistoryPath != "" {
		result.Storage.HistoryPath = override.Storage.HistoryPath
	}

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvVars applies environment variable overrides.
//
// Supported environment variables:
//   - MARKER_WATCH_LOG_LEVEL: Log level
//   - MARKER_WATCH_HISTORY_DB: Path to the dispatch history database
//   - MARKER_WATCH_CLAUDE_BIN: Path to the claude binary
func (l *loader) applyEnvVars(cfg *Config) *Config {
	result := *cfg

	if logLevel := os.Getenv("MARKER_WATCH_LOG_LEVEL"); logLevel != "" {
		result.Logging.Level = strings.ToLower(logLevel)
	}

	if historyPath := os.Getenv("MARKER_WATCH_HISTORY_DB"); historyPath != "" {
		result.Storage.HistoryPath = historyPath
	}

	if bin := os.Getenv("MARKER_WATCH_CLAUDE_BIN"); bin != "" {
		result.Dispatch.Binary = bin
	}

	return &result
}

// Load is a convenience function that creates a loader and loads
// configuration from the default locations.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a
// specific file, falling back to defaults for unset values.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

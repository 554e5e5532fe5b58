package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}

	if cfg.Watch.DebounceInterval != 100*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 100ms", cfg.Watch.DebounceInterval)
	}
	if cfg.Watch.MaxFileSize != 10*1024*1024 {
		t.Errorf("MaxFileSize = %d, want 10 MB", cfg.Watch.MaxFileSize)
	}
	if cfg.Seed.Interval != 5*time.Minute {
		t.Errorf("Seed.Interval = %v, want 5m", cfg.Seed.Interval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "zero debounce",
			mutate:  func(c *Config) { c.Watch.DebounceInterval = 0 },
			wantErr: ErrInvalidDebounceInterval,
		},
		{
			name:    "negative max file size",
			mutate:  func(c *Config) { c.Watch.MaxFileSize = -1 },
			wantErr: ErrInvalidMaxFileSize,
		},
		{
			name:    "zero failure threshold",
			mutate:  func(c *Config) { c.Watch.FailureThreshold = 0 },
			wantErr: ErrInvalidFailureThreshold,
		},
		{
			name:    "zero seed interval",
			mutate:  func(c *Config) { c.Seed.Interval = 0 },
			wantErr: ErrInvalidSeedInterval,
		},
		{
			name:    "marker text without token",
			mutate:  func(c *Config) { c.Seed.MarkerText = "please update" },
			wantErr: ErrMarkerTextMissingToken,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
watch:
  debounce_interval: 250ms
  max_file_size: 1048576
seed:
  interval: 1m
  marker_text: "refresh this claude!"
  delete_empty: true
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Watch.DebounceInterval != 250*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 250ms", cfg.Watch.DebounceInterval)
	}
	if cfg.Watch.MaxFileSize != 1048576 {
		t.Errorf("MaxFileSize = %d, want 1048576", cfg.Watch.MaxFileSize)
	}
	if cfg.Seed.Interval != time.Minute {
		t.Errorf("Seed.Interval = %v, want 1m", cfg.Seed.Interval)
	}
	if cfg.Seed.MarkerText != "refresh this claude!" {
		t.Errorf("MarkerText = %q", cfg.Seed.MarkerText)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	// Unset values fall back to defaults.
	if cfg.Watch.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %d, want default 5", cfg.Watch.FailureThreshold)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadFromFile() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("watch: [broken"), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	_, err := LoadFromFile(path)
	if !errors.Is(err, ErrInvalidYAML) {
		t.Errorf("LoadFromFile() error = %v, want ErrInvalidYAML", err)
	}
}

func TestEnvVarOverrides(t *testing.T) {
	t.Setenv("MARKER_WATCH_LOG_LEVEL", "ERROR")
	t.Setenv("MARKER_WATCH_HISTORY_DB", "/tmp/custom-history.db")
	t.Setenv("MARKER_WATCH_CLAUDE_BIN", "/opt/claude/bin/claude")

	l := &loader{}
	cfg := l.applyEnvVars(Default())

	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
	if cfg.Storage.HistoryPath != "/tmp/custom-history.db" {
		t.Errorf("HistoryPath = %q", cfg.Storage.HistoryPath)
	}
	if cfg.Dispatch.Binary != "/opt/claude/bin/claude" {
		t.Errorf("Dispatch.Binary = %q", cfg.Dispatch.Binary)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Watch.DebounceInterval = 300 * time.Millisecond
	cfg.Seed.DeleteEmpty = true

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loaded.Watch.DebounceInterval != 300*time.Millisecond {
		t.Errorf("DebounceInterval = %v, want 300ms", loaded.Watch.DebounceInterval)
	}
	if !loaded.Seed.DeleteEmpty {
		t.Error("Seed.DeleteEmpty = false, want true")
	}
}

func TestSaveInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Watch.DebounceInterval = -1

	if err := Save(cfg, filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Error("Save() error = nil, want validation error")
	}
}

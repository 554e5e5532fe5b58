package config

import (
	"os"
	"path/filepath"
)

// defaultClaudePaths returns directories commonly holding the claude
// binary. They are searched during auto-discovery and appended to the
// PATH of spawned processes.
func defaultClaudePaths() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return []string{"/usr/local/bin", "/usr/bin"}
	}

	return []string{
		filepath.Join(homeDir, ".claude", "local"),
		filepath.Join(homeDir, ".local", "bin"),
		filepath.Join(homeDir, ".npm-global", "bin"),
		"/usr/local/bin",
		"/usr/bin",
	}
}

// defaultHistoryPath returns the default dispatch history database path.
//
// Returns: ~/.config/marker-watch/history.db.
func defaultHistoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./history.db"
	}

	return filepath.Join(homeDir, ".config", "marker-watch", "history.db")
}

// defaultConfigPath returns the default configuration file path.
//
// Returns: ~/.config/marker-watch/config.yaml.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(homeDir, ".config", "marker-watch", "config.yaml")
}

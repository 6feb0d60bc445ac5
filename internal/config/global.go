package config

import (
	"os"
	"path/filepath"
)

// DefaultLogRoot returns the default log root used by the host
func DefaultLogRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".funchost", "logs")
}

// Global configuration variables
var (
	// ConfigPath is the path to the configuration file
	ConfigPath = DefaultConfigPath

	// ScriptRoot overrides the configured functions root when set on
	// the command line
	ScriptRoot string
)

// Package globalconfig provides global configuration management for pvcli.
// Configuration is stored at ~/.config/pvcli/config.yaml; the artifact
// store, provisioning log, and run history default to ~/.local/share/pvcli.
package globalconfig

import (
	"os"
	"path/filepath"
)

const (
	// ConfigDirName is the name of the config directory under ~/.config.
	ConfigDirName = "pvcli"
	// ConfigFileName is the name of the main config file.
	ConfigFileName = "config.yaml"
	// HistoryFileName is the name of the run-history file.
	HistoryFileName = "history.yaml"
)

// GetConfigDir returns the config directory path (~/.config/pvcli).
// Respects XDG_CONFIG_HOME if set.
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// dataDir returns the data directory (~/.local/share/pvcli).
// Respects XDG_DATA_HOME if set.
func dataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			dataHome = filepath.Join(home, ".local", "share")
		} else {
			dataHome = os.TempDir()
		}
	}
	return filepath.Join(dataHome, ConfigDirName)
}

// DefaultStoreDir returns the default local artifact store directory.
func DefaultStoreDir() string {
	return filepath.Join(dataDir(), "store")
}

// DefaultLogPath returns the default provisioning log path.
func DefaultLogPath() string {
	return filepath.Join(dataDir(), "provision.log")
}

// DefaultHistoryPath returns the default run-history path.
func DefaultHistoryPath() string {
	return filepath.Join(dataDir(), HistoryFileName)
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(configDir, 0755)
}

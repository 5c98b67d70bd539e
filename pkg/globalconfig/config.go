package globalconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current config schema version.
const Version = "1.0"

// Config represents the global pvcli configuration.
type Config struct {
	Version string `yaml:"version"`
	// BaseURL is the remote host artifacts are fetched from.
	BaseURL string `yaml:"base_url"`
	// Manifest is the default manifest URL or path.
	Manifest string `yaml:"manifest"`
	// StoreDir is the local artifact store directory.
	StoreDir string `yaml:"store_dir"`
	// LogPath is the append-only provisioning log.
	LogPath string `yaml:"log_path"`
	// HistoryPath is the run-history file.
	HistoryPath string `yaml:"history_path"`
	// FetchWorkers bounds concurrent downloads (0 or 1 = sequential).
	FetchWorkers int `yaml:"fetch_workers"`
}

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:     Version,
		StoreDir:    DefaultStoreDir(),
		LogPath:     DefaultLogPath(),
		HistoryPath: DefaultHistoryPath(),
	}
}

// Load reads the config file. A missing file yields the defaults, not an
// error.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the default location, creating the config
// directory if needed.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to an explicit path.
func SaveTo(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadOrCreate loads the config, writing the defaults to disk first if no
// config file exists yet.
func LoadOrCreate() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFrom(path)
}

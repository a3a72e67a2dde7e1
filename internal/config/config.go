// Package config provides configuration loading for dockb.
// Configuration is resolved from defaults, then a YAML file, then
// DOCKB_* environment variables (highest priority).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the current config schema version.
const CurrentVersion = 1

// Config represents the complete dockb configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Docs    DocsConfig    `yaml:"docs" json:"docs"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Scanner ScannerConfig `yaml:"scanner" json:"scanner"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Watcher WatcherConfig `yaml:"watcher" json:"watcher"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DocsConfig configures the on-disk document store.
type DocsConfig struct {
	// Root is the directory holding category subdirectories.
	Root string `yaml:"root" json:"root"`
}

// IndexConfig configures index storage.
type IndexConfig struct {
	// DataDir is the directory holding the SQLite index database.
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// ScannerConfig configures the reconciliation scanner.
type ScannerConfig struct {
	// Workers is the number of concurrent document workers.
	// Zero means runtime.NumCPU().
	Workers int `yaml:"workers" json:"workers"`
}

// SearchConfig configures search behavior.
type SearchConfig struct {
	// MaxResults caps the number of results returned per query.
	// Zero means unlimited.
	MaxResults int `yaml:"max_results" json:"max_results"`
}

// WatcherConfig configures the live re-index watcher.
type WatcherConfig struct {
	// Enabled turns on filesystem watching during serve.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// DebounceMS is the event debounce window in milliseconds.
	DebounceMS int `yaml:"debounce_ms" json:"debounce_ms"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	base := filepath.Join(home, ".dockb")
	return &Config{
		Version: CurrentVersion,
		Docs: DocsConfig{
			Root: filepath.Join(base, "docs"),
		},
		Index: IndexConfig{
			DataDir: filepath.Join(base, "data"),
		},
		Scanner: ScannerConfig{
			Workers: runtime.NumCPU(),
		},
		Search: SearchConfig{
			MaxResults: 0,
		},
		Watcher: WatcherConfig{
			Enabled:    false,
			DebounceMS: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path (~/.dockb/config.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".dockb", "config.yaml")
	}
	return filepath.Join(home, ".dockb", "config.yaml")
}

// Load reads configuration from the given path, falling back to defaults
// when the file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file is fine, defaults apply
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies DOCKB_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DOCKB_DOCS_ROOT"); v != "" {
		c.Docs.Root = v
	}
	if v := os.Getenv("DOCKB_DATA_DIR"); v != "" {
		c.Index.DataDir = v
	}
	if v := os.Getenv("DOCKB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOCKB_SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scanner.Workers = n
		}
	}
	if v := os.Getenv("DOCKB_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.MaxResults = n
		}
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Docs.Root == "" {
		return fmt.Errorf("docs.root must not be empty")
	}
	if c.Index.DataDir == "" {
		return fmt.Errorf("index.data_dir must not be empty")
	}
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("scanner.workers must not be negative")
	}
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must not be negative")
	}
	if c.Watcher.DebounceMS < 0 {
		return fmt.Errorf("watcher.debounce_ms must not be negative")
	}
	return nil
}

// IndexPath returns the full path to the SQLite index database.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Index.DataDir, "index.db")
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

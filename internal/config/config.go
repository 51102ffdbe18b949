// Package config loads the cadence configuration file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = "cadence.yaml"

// Config holds runtime settings for the engine and CLI.
type Config struct {
	// DatabasePath is the SQLite file backing the timeline.
	DatabasePath string `yaml:"database_path"`

	// DefaultBeatDuration seeds the utility default for new databases.
	DefaultBeatDuration float64 `yaml:"default_beat_duration"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DatabasePath:        "cadence.db",
		DefaultBeatDuration: 0.5,
		LogLevel:            "info",
	}
}

// Load reads a config file, applying defaults for absent fields.
// A missing file at the default location is not an error; a missing file
// at an explicitly given path is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return Config{}, fmt.Errorf("config file not found: %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields to catch typos
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	// Resolve the database path relative to the config file location so
	// running from another directory still finds the same database.
	if !filepath.IsAbs(cfg.DatabasePath) {
		cfg.DatabasePath = filepath.Join(filepath.Dir(path), cfg.DatabasePath)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.DefaultBeatDuration < 0 {
		return fmt.Errorf("default_beat_duration must not be negative, got %v", c.DefaultBeatDuration)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	return nil
}

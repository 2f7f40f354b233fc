// Package config loads the host configuration for the plugin subsystem.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the pagedeck host configuration.
type Config struct {
	Plugins PluginsConfig `yaml:"plugins"`
	Logging LoggingConfig `yaml:"logging"`
}

// PluginsConfig controls plugin discovery and execution.
type PluginsConfig struct {
	// Root is the plugin root directory; each immediate subdirectory is
	// one candidate package.
	Root string `yaml:"root"`

	// Parallelism bounds concurrent package loads.
	Parallelism int `yaml:"parallelism"`

	// ExecutionTimeout is the deadline the CLI imposes on a single
	// plugin execution. The Manager itself has no built-in timeout.
	ExecutionTimeout time.Duration `yaml:"-"`

	// RawExecutionTimeout is the on-disk form, e.g. "30s".
	RawExecutionTimeout string `yaml:"execution_timeout"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load parses a YAML configuration file. A missing file yields the
// defaults without error; a malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills unset fields and parses the timeout form.
func (c *Config) applyDefaults() error {
	if c.Plugins.Root == "" {
		c.Plugins.Root = DefaultPluginRoot()
	}
	if c.Plugins.Parallelism <= 0 {
		c.Plugins.Parallelism = 4
	}

	if c.Plugins.RawExecutionTimeout == "" {
		c.Plugins.ExecutionTimeout = 30 * time.Second
	} else {
		d, err := time.ParseDuration(c.Plugins.RawExecutionTimeout)
		if err != nil {
			return fmt.Errorf("invalid execution_timeout %q: %w", c.Plugins.RawExecutionTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("execution_timeout must be positive, got %q", c.Plugins.RawExecutionTimeout)
		}
		c.Plugins.ExecutionTimeout = d
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	return nil
}

// DefaultPluginRoot returns ~/.config/pagedeck/plugins, falling back to
// a relative directory when the home directory is unknown.
func DefaultPluginRoot() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "pagedeck", "plugins")
	}
	return filepath.Join(".pagedeck", "plugins")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "pagedeck", "pagedeck.yaml")
	}
	return filepath.Join(".pagedeck", "pagedeck.yaml")
}

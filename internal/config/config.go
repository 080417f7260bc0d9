// Package config handles the persisted user defaults and their environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"logsynth/internal/core"
	"logsynth/internal/format"
	"logsynth/internal/ratelimit"
)

// EnvPrefix prefixes every environment override (LOGSYNTH_RATE, ...).
const EnvPrefix = "logsynth"

// Config is the root of config.yaml.
type Config struct {
	Defaults Defaults `yaml:"defaults"`
}

// Defaults are the values CLI flags fall back to.
type Defaults struct {
	Rate   float64 `yaml:"rate" envconfig:"RATE"`
	Format string  `yaml:"format" envconfig:"FORMAT"`
	Output string  `yaml:"output,omitempty" envconfig:"OUTPUT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{Defaults: Defaults{Rate: 10, Format: "plain"}}
}

// Dir returns $XDG_CONFIG_HOME/logsynth, or ~/.config/logsynth.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "logsynth")
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// LoadConfig reads path over the built-in defaults. A missing file is not
// an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Load resolves file < environment, then validates.
func Load(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides defaults from LOGSYNTH_* variables. Unset variables
// leave the current value alone.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, &cfg.Defaults); err != nil {
		return fmt.Errorf("%w: environment: %v", core.ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the defaults are usable.
func (c *Config) Validate() error {
	if err := ratelimit.ValidateRate(c.Defaults.Rate); err != nil {
		return fmt.Errorf("defaults.rate: %w", err)
	}
	if _, err := format.New(c.Defaults.Format, format.Options{}); err != nil {
		return fmt.Errorf("%w: defaults.format: %v", core.ErrInvalidConfig, err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Init writes the default configuration unless path already exists. It
// reports whether a file was created.
func Init(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := Save(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}

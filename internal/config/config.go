// Package config handles application configuration: a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Bergam0t/ciw-example-animation/internal/model"
	"github.com/Bergam0t/ciw-example-animation/internal/storage"
)

// Config is the application configuration stored in
// ~/.config/callsim/config.yml.
type Config struct {
	DataDir string `yaml:"data_dir,omitempty"` // run history location
	Listen  string `yaml:"listen,omitempty"`   // dashboard bind address

	// Rate limiting for the dashboard API.
	RateLimit float64 `yaml:"rate_limit,omitempty"` // requests per second
	RateBurst int     `yaml:"rate_burst,omitempty"`

	// Default experiment parameters, overridable per request/command.
	Experiment model.Experiment `yaml:"experiment,omitempty"`

	// Replications defaults the number of replications per run.
	Replications int `yaml:"replications,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "callsim"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// DefaultListen is the default dashboard bind address.
	DefaultListen = ":8080"
	// DefaultRateLimit is the default API rate in requests per second.
	DefaultRateLimit = 10
	// DefaultRateBurst is the default rate limiter burst.
	DefaultRateBurst = 20
	// DefaultReplications matches the dashboard's default input.
	DefaultReplications = 10
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		Listen:       DefaultListen,
		RateLimit:    DefaultRateLimit,
		RateBurst:    DefaultRateBurst,
		Experiment:   model.Default(),
		Replications: DefaultReplications,
	}
}

// DefaultDataDir returns the default run-history location: a
// .callsim directory in the user's home, falling back to the working
// directory when no home is available.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return storage.DataDirName
	}
	return filepath.Join(home, storage.DataDirName)
}

// Path returns the path to the config file. Respects XDG_CONFIG_HOME,
// defaults to ~/.config/callsim/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads configuration, layering: defaults, then the config file
// (if present), then CALLSIM_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads configuration from an explicit file path. A missing
// file is not an error: defaults and environment still apply.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays CALLSIM_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CALLSIM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CALLSIM_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("CALLSIM_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit = f
		}
	}
	if v := os.Getenv("CALLSIM_REPLICATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Replications = n
		}
	}
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %v", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be >= 1, got %d", c.RateBurst)
	}
	if c.Replications < 1 {
		return fmt.Errorf("replications must be >= 1, got %d", c.Replications)
	}
	return c.Experiment.Validate()
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

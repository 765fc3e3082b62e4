package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"clonekit/internal/logging"
	"clonekit/pkg/deepclone"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "clonekit.yaml"

// Config holds all clonekit configuration.
type Config struct {
	Name string `yaml:"name"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Storage wrapper
	Cache CacheConfig `yaml:"cache"`

	// Debounce / throttle defaults
	Timing TimingConfig `yaml:"timing"`

	// clone command behavior
	Clone CloneConfig `yaml:"clone"`
}

// CacheConfig configures the storage wrapper.
type CacheConfig struct {
	Driver string `yaml:"driver"` // sqlite (modernc), sqlite3 (mattn)
	Path   string `yaml:"path"`   // file path or :memory:
}

// TimingConfig holds durations in time.ParseDuration syntax.
type TimingConfig struct {
	Debounce string `yaml:"debounce"`
	Throttle string `yaml:"throttle"`
}

// CloneConfig configures the clone command.
type CloneConfig struct {
	Format  string `yaml:"format"`  // yaml, json
	Verify  bool   `yaml:"verify"`  // compare the clone with its source
	Workers int    `yaml:"workers"` // files cloned in parallel
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "clonekit",

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Dir:    filepath.Join(".clonekit", "logs"),
		},

		Cache: CacheConfig{
			Driver: "sqlite",
			Path:   filepath.Join(".clonekit", "cache.db"),
		},

		Timing: TimingConfig{
			Debounce: "500ms",
			Throttle: "500ms",
		},

		Clone: CloneConfig{
			Format:  "yaml",
			Verify:  true,
			Workers: 4,
		},
	}
}

// Load loads configuration from a YAML file over the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logging.ConfigDebug("No config at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if driver := os.Getenv("CLONEKIT_CACHE_DRIVER"); driver != "" {
		c.Cache.Driver = driver
	}
	if path := os.Getenv("CLONEKIT_CACHE_PATH"); path != "" {
		c.Cache.Path = path
	}
	if level := os.Getenv("CLONEKIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if debug := os.Getenv("CLONEKIT_DEBUG"); debug != "" {
		if on, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = on
		}
	}
}

// Copy returns an independent copy of the configuration.
func (c *Config) Copy() *Config {
	return deepclone.Clone(c)
}

// GetDebounce returns the debounce delay.
func (c *Config) GetDebounce() time.Duration {
	return parseDurationOr(c.Timing.Debounce, 500*time.Millisecond)
}

// GetThrottle returns the throttle interval.
func (c *Config) GetThrottle() time.Duration {
	return parseDurationOr(c.Timing.Throttle, 500*time.Millisecond)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("cache.driver must be sqlite or sqlite3, got %q", c.Cache.Driver)
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required")
	}
	switch c.Clone.Format {
	case "yaml", "json":
	default:
		return fmt.Errorf("clone.format must be yaml or json, got %q", c.Clone.Format)
	}
	if c.Clone.Workers < 1 {
		return fmt.Errorf("clone.workers must be at least 1")
	}
	for name, raw := range map[string]string{"timing.debounce": c.Timing.Debounce, "timing.throttle": c.Timing.Throttle} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return c.Logging.Validate()
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "formulate.yaml"

// Config holds all formulate configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Variable catalog source and offline cache
	Catalog CatalogConfig `yaml:"catalog"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Terminal editor
	UI UIConfig `yaml:"ui"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "formulate",
		Version: "0.3.0",

		Catalog: CatalogConfig{
			BaseURL:   "https://652f91320b8d8ddac0b2b62b.mockapi.io",
			Path:      "/autocomplete",
			Timeout:   "120s",
			CachePath: defaultCachePath(),
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "formulate.log",
		},

		UI: *DefaultUIConfig(),
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
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
	if url := os.Getenv("FORMULATE_CATALOG_URL"); url != "" {
		c.Catalog.BaseURL = url
	}
	if path := os.Getenv("FORMULATE_CACHE_PATH"); path != "" {
		c.Catalog.CachePath = path
	}
	if v := os.Getenv("FORMULATE_OFFLINE"); v != "" {
		if offline, err := strconv.ParseBool(v); err == nil {
			c.Catalog.Offline = offline
		}
	}
	if level := os.Getenv("FORMULATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if os.Getenv("FORMULATE_DARK_MODE") == "1" {
		c.UI.DarkMode = true
	}
}

// GetCatalogTimeout returns the catalog request timeout as a duration.
func (c *Config) GetCatalogTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil || d <= 0 {
		return 120 * time.Second
	}
	return d
}

// CatalogURL returns the full catalog endpoint.
func (c *Config) CatalogURL() string {
	path := c.Catalog.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(c.Catalog.BaseURL, "/") + path
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Catalog.Offline && strings.TrimSpace(c.Catalog.BaseURL) == "" {
		return fmt.Errorf("catalog base URL not configured (set catalog.base_url or FORMULATE_CATALOG_URL, or enable offline mode)")
	}
	if c.Catalog.Offline && strings.TrimSpace(c.Catalog.CachePath) == "" {
		return fmt.Errorf("offline mode requires catalog.cache_path")
	}
	if _, err := time.ParseDuration(c.Catalog.Timeout); c.Catalog.Timeout != "" && err != nil {
		return fmt.Errorf("invalid catalog timeout %q: %w", c.Catalog.Timeout, err)
	}

	if c.Logging.Level != "" {
		validLevel := false
		for _, l := range ValidLogLevels {
			if c.Logging.Level == l {
				validLevel = true
				break
			}
		}
		if !validLevel {
			return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
		}
	}

	if c.UI.MaxSuggestions < 0 {
		return fmt.Errorf("ui.max_suggestions must not be negative")
	}

	return nil
}

// defaultCachePath places the catalog cache under the user cache directory.
func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".formulate", "catalog.db")
	}
	return filepath.Join(dir, "formulate", "catalog.db")
}

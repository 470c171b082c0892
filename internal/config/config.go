// Package config loads and finalizes service configuration from TOML files,
// environment overlays, and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmcallister/orcview/internal/registry"
	"github.com/jmcallister/orcview/internal/sessions"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvOrcviewEnv             = "ORCVIEW_ENV"
	EnvOrcviewShutdownTimeout = "ORCVIEW_SHUTDOWN_TIMEOUT"
	EnvOrcviewVersion         = "ORCVIEW_VERSION"
)

var sessionsEnv = &sessions.Env{
	TTL:        "ORCVIEW_SESSIONS_TTL",
	CookieName: "ORCVIEW_SESSIONS_COOKIE_NAME",
}

var registryEnv = &registry.Env{
	BaseURL:           "ORCVIEW_REGISTRY_BASE_URL",
	Timeout:           "ORCVIEW_REGISTRY_TIMEOUT",
	RequestsPerSecond: "ORCVIEW_REGISTRY_REQUESTS_PER_SECOND",
	MaxConcurrency:    "ORCVIEW_REGISTRY_MAX_CONCURRENCY",
	MaxResults:        "ORCVIEW_REGISTRY_MAX_RESULTS",
}

// Config is the root configuration for the orcview service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Sessions        sessions.Config `toml:"sessions"`
	Registry        registry.Config `toml:"registry"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ORCVIEW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvOrcviewEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Sessions.Merge(&overlay.Sessions)
	c.Registry.Merge(&overlay.Registry)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Sessions.Finalize(sessionsEnv); err != nil {
		return fmt.Errorf("sessions: %w", err)
	}
	if err := c.Registry.Finalize(registryEnv); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvOrcviewShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvOrcviewVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvOrcviewEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

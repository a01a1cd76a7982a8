// Package config loads the dashboard settings from YAML with environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the dashboard.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Notify  NotifyConfig  `yaml:"notify"`
	Mock    MockConfig    `yaml:"mock"`
}

// APIConfig points at the retail REST API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"` // empty or "0" means no timeout
}

// StorageConfig selects where the session is persisted.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, memory
	Path   string `yaml:"path"`
	Origin string `yaml:"origin"` // defaults to the API's scheme://host
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console, json
}

type NotifyConfig struct {
	TTL string `yaml:"ttl"`
}

// MockConfig configures the mock-server command.
type MockConfig struct {
	Addr string `yaml:"addr"`
}

// Environment variables read by Load.
const (
	EnvAPIURL   = "BACKOFFICE_API_URL"
	EnvStorage  = "BACKOFFICE_STORAGE"
	EnvOrigin   = "BACKOFFICE_ORIGIN"
	EnvLogLevel = "BACKOFFICE_LOG_LEVEL"
)

// DefaultBaseURL is where the API listens in development.
const DefaultBaseURL = "http://localhost:5044/api"

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{BaseURL: DefaultBaseURL},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   filepath.Join(Dir(), "storage.db"),
		},
		Log:    LogConfig{Level: "warn", Format: "console"},
		Notify: NotifyConfig{TTL: "4s"},
		Mock:   MockConfig{Addr: "127.0.0.1:5044"},
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "backoffice")
}

// DefaultPath is the config file used when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvStorage); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvOrigin); v != "" {
		c.Storage.Origin = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// APITimeout returns the request timeout; zero means none.
func (c *Config) APITimeout() time.Duration {
	if c.API.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// NotifyTTL returns how long notifications stay visible.
func (c *Config) NotifyTTL() time.Duration {
	d, err := time.ParseDuration(c.Notify.TTL)
	if err != nil || d <= 0 {
		return 4 * time.Second
	}
	return d
}

// StorageOrigin scopes persisted state, like a browser origin.
func (c *Config) StorageOrigin() string {
	if c.Storage.Origin != "" {
		return c.Storage.Origin
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" {
		return c.API.BaseURL
	}
	return u.Scheme + "://" + u.Host
}

// Validate checks the settings before anything is opened.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api base_url %q: must be an absolute http(s) URL", c.API.BaseURL)
	}
	if c.API.Timeout != "" {
		d, err := time.ParseDuration(c.API.Timeout)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid api timeout %q", c.API.Timeout)
		}
	}
	switch c.Storage.Driver {
	case "", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid storage driver: %s (valid: sqlite, memory)", c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for driver %q", c.Storage.Driver)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s (valid: console, json)", c.Log.Format)
	}
	if d, err := time.ParseDuration(c.Notify.TTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid notify ttl %q: must be a positive duration", c.Notify.TTL)
	}
	return nil
}

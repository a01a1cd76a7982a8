package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAPIURL, EnvStorage, EnvOrigin, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "http://localhost:5044", cfg.StorageOrigin())
	assert.Equal(t, 4*time.Second, cfg.NotifyTTL())
	assert.Zero(t, cfg.APITimeout())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: https://shop.example.com/api
  timeout: 15s
log:
  level: debug
  format: json
notify:
  ttl: 2s
`), 0o644))
	clearEnv(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvOrigin, "https://admin.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://admin.example.com", cfg.StorageOrigin())
	assert.Equal(t, 2*time.Second, cfg.NotifyTTL())
	assert.Equal(t, "sqlite", cfg.Storage.Driver, "unset fields keep defaults")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://127.0.0.1:9000/api"
	require.NoError(t, cfg.Save(path))

	clearEnv(t)
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"relative url":   func(c *Config) { c.API.BaseURL = "/api" },
		"ftp url":        func(c *Config) { c.API.BaseURL = "ftp://example.com" },
		"bad timeout":    func(c *Config) { c.API.Timeout = "soon" },
		"bad driver":     func(c *Config) { c.Storage.Driver = "redis" },
		"missing path":   func(c *Config) { c.Storage.Path = "" },
		"bad level":      func(c *Config) { c.Log.Level = "loud" },
		"bad format":     func(c *Config) { c.Log.Format = "xml" },
		"zero ttl":       func(c *Config) { c.Notify.TTL = "0s" },
		"unparsable ttl": func(c *Config) { c.Notify.TTL = "a while" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Storage.Path = ""
	assert.NoError(t, cfg.Validate())
}

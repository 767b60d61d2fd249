package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":3001", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  address: ":9000"
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
logging:
  level: debug
auth:
  jwt_secret: test-secret
  access_token_ttl: 5m
  refresh_token_ttl: 24h
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	// untouched sections keep defaults
	assert.Equal(t, 30*time.Second, cfg.Realtime.PingInterval)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server address", func(c *Config) { c.Server.Address = "" }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero ping interval", func(c *Config) { c.Realtime.PingInterval = 0 }},
		{"empty moderation endpoint", func(c *Config) { c.Moderation.Endpoint = "" }},
		{"empty jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"redis enabled without address", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Address = ""
		}},
		{"rate limit enabled without rps", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.RequestsPerSecond = 0
		}},
		{"tracing sample rate out of range", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.SampleRate = 2.0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("YACOOLO_SERVER_ADDRESS", ":4000")
	t.Setenv("YACOOLO_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.Address)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: billing-daemon
  environment: test
backend:
  base_url: http://localhost:9000/api
  callback_url: http://localhost:8080/payment/callback
tokenizer:
  base_url: http://localhost:9100
database:
  redis:
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "billing-daemon", cfg.App.Name)
	assert.Equal(t, "http://localhost:9000/api", cfg.Backend.BaseURL)

	// Defaults for everything the file left out.
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30000, cfg.Backend.Timeout)
	assert.Equal(t, "tr", cfg.Tokenizer.Locale)
	assert.Equal(t, 10, cfg.Checkout.PollMaxAttempts)
	assert.Equal(t, 2000, cfg.Checkout.PollInterval)
	assert.Equal(t, 60000, cfg.Cache.UsageTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
backend:
  base_url: http://localhost:9000/api
  callback_url: http://localhost:8080/payment/callback
  timeout: 10000
tokenizer:
  base_url: http://localhost:9100
  locale: en
checkout:
  poll_max_attempts: 3
  poll_interval: 500
database:
  redis:
    address: localhost:6379
logging:
  level: debug
  format: console
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Backend.Timeout)
	assert.Equal(t, "en", cfg.Tokenizer.Locale)
	assert.Equal(t, 3, cfg.Checkout.PollMaxAttempts)
	assert.Equal(t, 500, cfg.Checkout.PollInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_MissingBackendURLFails(t *testing.T) {
	path := writeConfigFile(t, `
backend:
  callback_url: http://localhost:8080/payment/callback
tokenizer:
  base_url: http://localhost:9100
database:
  redis:
    address: localhost:6379
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, GetDuration(2000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

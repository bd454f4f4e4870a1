// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.0.0").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.0.0", cfg.Version)
	assert.Equal(t, ":8080", cfg.APIListenAddr)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.InitialIngest)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
datasetPath: /data/sales.csv
listenAddr: ":9999"
cacheBackend: none
rateLimitRPM: 120
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/sales.csv", cfg.DatasetPath)
	assert.Equal(t, ":9999", cfg.APIListenAddr)
	assert.Equal(t, "none", cfg.CacheBackend)
	assert.Equal(t, 120, cfg.RateLimitRPM)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: \":9999\"\n"), 0o600))

	t.Setenv("SALESD_LISTEN", ":7777")
	t.Setenv("SALESD_CACHE_TTL", "30s")

	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.APIListenAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	_, err := NewLoader("/nonexistent/config.yaml", "dev").Load()
	assert.NoError(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: [\n"), 0o600))

	_, err := NewLoader(path, "dev").Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *AppConfig) {}, false},
		{"empty dataset path", func(c *AppConfig) { c.DatasetPath = "" }, true},
		{"empty sqlite path", func(c *AppConfig) { c.SQLitePath = "" }, true},
		{"unknown cache backend", func(c *AppConfig) { c.CacheBackend = "badger" }, true},
		{"redis backend without addr", func(c *AppConfig) {
			c.CacheBackend = "redis"
			c.RedisAddr = ""
		}, true},
		{"negative rate limit", func(c *AppConfig) { c.RateLimitRPM = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("SALESD_TEST_INT", "not-a-number")
	t.Setenv("SALESD_TEST_BOOL", "not-a-bool")
	t.Setenv("SALESD_TEST_DUR", "not-a-duration")

	assert.Equal(t, 42, ParseInt("SALESD_TEST_INT", 42))
	assert.True(t, ParseBool("SALESD_TEST_BOOL", true))
	assert.Equal(t, time.Minute, ParseDuration("SALESD_TEST_DUR", time.Minute))
}

func TestParseStringSlice(t *testing.T) {
	t.Setenv("SALESD_TEST_LIST", "a, b ,,c")
	assert.Equal(t, []string{"a", "b", "c"}, ParseStringSlice("SALESD_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, ParseStringSlice("SALESD_TEST_MISSING", []string{"x"}))
}

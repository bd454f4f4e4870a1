// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader resolves configuration with the precedence ENV > file > defaults.
type Loader struct {
	path    string
	version string
}

// NewLoader creates a loader for the optional YAML file at path.
func NewLoader(path, version string) *Loader {
	return &Loader{path: path, version: version}
}

// Load builds the effective configuration and validates it.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.path != "" {
		if err := mergeFile(&cfg, l.path); err != nil {
			return AppConfig{}, err
		}
	}

	mergeEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// mergeFile overlays values from a YAML file onto cfg. A missing file is not
// an error; a malformed one is.
func mergeFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// mergeEnv overlays environment variables onto cfg. ENV always wins.
func mergeEnv(cfg *AppConfig) {
	cfg.DataDir = ParseString("SALESD_DATA", cfg.DataDir)
	cfg.DatasetPath = ParseString("SALESD_DATASET", cfg.DatasetPath)
	cfg.SQLitePath = ParseString("SALESD_DB", cfg.SQLitePath)
	cfg.StrictParse = ParseBool("SALESD_STRICT_PARSE", cfg.StrictParse)
	cfg.WatchDataset = ParseBool("SALESD_WATCH", cfg.WatchDataset)
	cfg.InitialIngest = ParseBool("SALESD_INITIAL_INGEST", cfg.InitialIngest)
	cfg.LogLevel = ParseString("SALESD_LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = ParseString("SALESD_LOG_SERVICE", cfg.LogService)
	cfg.APIListenAddr = ParseString("SALESD_LISTEN", cfg.APIListenAddr)
	cfg.AllowedOrigins = ParseStringSlice("SALESD_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.RateLimitRPM = ParseInt("SALESD_RATE_LIMIT_RPM", cfg.RateLimitRPM)
	cfg.RefreshRPM = ParseInt("SALESD_REFRESH_RPM", cfg.RefreshRPM)
	cfg.MetricsEnabled = ParseBool("SALESD_METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.MetricsAddr = ParseString("SALESD_METRICS_ADDR", cfg.MetricsAddr)
	cfg.CacheBackend = ParseString("SALESD_CACHE_BACKEND", cfg.CacheBackend)
	cfg.CacheTTL = ParseDuration("SALESD_CACHE_TTL", cfg.CacheTTL)
	cfg.RedisAddr = ParseString("SALESD_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = ParseInt("SALESD_REDIS_DB", cfg.RedisDB)
	cfg.RedisPassword = ParseString("SALESD_REDIS_PASSWORD", cfg.RedisPassword)
}

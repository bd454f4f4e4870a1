// SPDX-License-Identifier: MIT

// Package config loads service configuration with the precedence
// ENV > file > defaults.
package config

import (
	"path/filepath"
	"time"
)

// AppConfig holds the full runtime configuration for salesd.
type AppConfig struct {
	Version string `yaml:"-"`

	// Dataset
	DataDir       string `yaml:"dataDir"`
	DatasetPath   string `yaml:"datasetPath"`
	StrictParse   bool   `yaml:"strictParse"`
	WatchDataset  bool   `yaml:"watchDataset"`
	InitialIngest bool   `yaml:"initialIngest"`

	// Storage
	SQLitePath string `yaml:"sqlitePath"`

	// Logging
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	// HTTP
	APIListenAddr  string   `yaml:"listenAddr"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	RateLimitRPM   int      `yaml:"rateLimitRPM"`
	RefreshRPM     int      `yaml:"refreshRPM"`

	// Metrics
	MetricsEnabled bool   `yaml:"metricsEnabled"`
	MetricsAddr    string `yaml:"metricsAddr"`

	// Cache
	CacheBackend  string        `yaml:"cacheBackend"` // memory | redis | none
	CacheTTL      time.Duration `yaml:"cacheTTL"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisDB       int           `yaml:"redisDB"`
	RedisPassword string        `yaml:"redisPassword"`
}

// ServerConfig holds HTTP server operational parameters.
type ServerConfig struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Defaults returns the built-in default configuration.
func Defaults() AppConfig {
	dataDir := "/var/lib/salesd"
	return AppConfig{
		DataDir:        dataDir,
		DatasetPath:    filepath.Join(dataDir, "supermart.csv"),
		SQLitePath:     filepath.Join(dataDir, "salesd.db"),
		StrictParse:    false,
		WatchDataset:   false,
		InitialIngest:  true,
		LogLevel:       "info",
		LogService:     "salesd",
		APIListenAddr:  ":8080",
		RateLimitRPM:   600,
		RefreshRPM:     10,
		MetricsEnabled: true,
		MetricsAddr:    ":9090",
		CacheBackend:   "memory",
		CacheTTL:       5 * time.Minute,
		RedisAddr:      "localhost:6379",
	}
}

// ParseServerConfig reads server tuning parameters from the environment.
func ParseServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:      ParseString("SALESD_LISTEN", ":8080"),
		ReadTimeout:     ParseDuration("SALESD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    ParseDuration("SALESD_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     ParseDuration("SALESD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: ParseDuration("SALESD_SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

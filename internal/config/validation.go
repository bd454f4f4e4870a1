// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig wraps all validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

var validCacheBackends = map[string]bool{
	"memory": true,
	"redis":  true,
	"none":   true,
}

// Validate checks the configuration for values that would fail at runtime.
func (c AppConfig) Validate() error {
	if c.DatasetPath == "" {
		return fmt.Errorf("%w: dataset path must be set", ErrInvalidConfig)
	}
	if c.SQLitePath == "" {
		return fmt.Errorf("%w: sqlite path must be set", ErrInvalidConfig)
	}
	if c.APIListenAddr == "" {
		return fmt.Errorf("%w: listen address must be set", ErrInvalidConfig)
	}
	if !validCacheBackends[c.CacheBackend] {
		return fmt.Errorf("%w: unknown cache backend %q (memory, redis, none)", ErrInvalidConfig, c.CacheBackend)
	}
	if c.CacheBackend == "redis" && c.RedisAddr == "" {
		return fmt.Errorf("%w: redis cache backend requires a redis address", ErrInvalidConfig)
	}
	if c.RateLimitRPM < 0 || c.RefreshRPM < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache TTL must not be negative", ErrInvalidConfig)
	}
	return nil
}

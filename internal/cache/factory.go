// SPDX-License-Identifier: MIT

package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// Options selects and configures the cache backend.
type Options struct {
	Backend string // memory | redis | none
	Redis   RedisConfig
}

// New builds the configured cache backend. A Redis connection failure falls
// back to the in-memory cache with a warning so queries keep working.
func New(opts Options, logger zerolog.Logger) Cache {
	switch opts.Backend {
	case "none":
		return NewNoOp()
	case "redis":
		c, err := NewRedis(opts.Redis, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("event", "cache.redis.fallback").
				Str("addr", opts.Redis.Addr).
				Msg("redis unavailable, falling back to in-memory cache")
			return NewMemory(time.Minute)
		}
		return c
	default:
		return NewMemory(time.Minute)
	}
}

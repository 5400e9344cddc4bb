package config

import (
	"fmt"
)

// ValidateConfig validates a loaded configuration. The first problem found
// is reported with its field path.
func ValidateConfig(cfg *GatewayConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validatePort(cfg.Server.Port); err != nil {
		return fmt.Errorf("server.port: %w", err)
	}

	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format: must be json or console, got %q", cfg.Log.Format)
	}

	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn: required")
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return fmt.Errorf("database.minConns: must not exceed database.maxConns")
	}

	if cfg.Cache.Enabled {
		switch cfg.Cache.Type {
		case "", CacheTypeMemory:
		case CacheTypeRedis:
			if cfg.Cache.Redis.Address == "" {
				return fmt.Errorf("cache.redis.address: required for redis cache")
			}
		default:
			return fmt.Errorf("cache.type: unknown cache type %q", cfg.Cache.Type)
		}
	}

	return nil
}

// validatePort validates a TCP port number.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", port)
	}
	return nil
}

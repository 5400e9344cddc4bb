// Package config defines the gateway configuration and its YAML loading,
// validation and hot-reload plumbing.
package config

import "time"

// GatewayConfig is the root configuration for the gateway.
type GatewayConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address        string   `yaml:"address"`
	Port           int      `yaml:"port"`
	ReadTimeout    Duration `yaml:"readTimeout"`
	WriteTimeout   Duration `yaml:"writeTimeout"`
	IdleTimeout    Duration `yaml:"idleTimeout"`
	MaxHeaderBytes int      `yaml:"maxHeaderBytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// Realm is the Basic auth realm presented in challenges.
	Realm string `yaml:"realm"`
}

// DatabaseConfig holds Postgres settings.
type DatabaseConfig struct {
	DSN             string   `yaml:"dsn"`
	MaxConns        int32    `yaml:"maxConns"`
	MinConns        int32    `yaml:"minConns"`
	ConnMaxLifetime Duration `yaml:"connMaxLifetime"`
}

// Cache backend types.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// CacheConfig holds settings for the attribution cache.
type CacheConfig struct {
	Enabled    bool        `yaml:"enabled"`
	Type       string      `yaml:"type"`
	TTL        Duration    `yaml:"ttl"`
	MaxEntries int         `yaml:"maxEntries"`
	KeyPrefix  string      `yaml:"keyPrefix"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DefaultConfig returns a configuration with sensible defaults. Loading a
// file overlays onto these values.
func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    Duration(30 * time.Second),
			WriteTimeout:   Duration(30 * time.Second),
			IdleTimeout:    Duration(120 * time.Second),
			MaxHeaderBytes: 1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Auth: AuthConfig{
			Realm: "avgitgw",
		},
		Database: DatabaseConfig{
			MaxConns: 8,
			MinConns: 2,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Type:       CacheTypeMemory,
			TTL:        Duration(5 * time.Minute),
			MaxEntries: 10000,
		},
	}
}

package bridge

import (
	"os"
	"strconv"
)

// RedisConfig holds connection settings for the Redis presence mirror.
type RedisConfig struct {
	Addr      string // Redis address, default "localhost:6379"
	Password  string // Redis password, default ""
	DB        int    // Redis database number, default 0
	Prefix    string // Key prefix, default "relay:"
	QueueSize int    // Pending writes before new ones are dropped, default 1024
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:      "localhost:6379",
		Prefix:    "relay:",
		QueueSize: 1024,
	}
}

// PresenceKey is the hash holding userId → channelId.
func (c *RedisConfig) PresenceKey() string {
	return c.Prefix + "presence"
}

// RedisConfigFromEnv loads Redis configuration from environment variables.
// Falls back to defaults for any missing values.
func RedisConfigFromEnv() *RedisConfig {
	cfg := DefaultRedisConfig()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Password = pw
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.DB = db
		}
	}
	if prefix := os.Getenv("REDIS_PRESENCE_PREFIX"); prefix != "" {
		cfg.Prefix = prefix
	}
	if qs := os.Getenv("REDIS_PRESENCE_QUEUE"); qs != "" {
		if n, err := strconv.Atoi(qs); err == nil && n > 0 {
			cfg.QueueSize = n
		}
	}
	return cfg
}

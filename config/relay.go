package config

import (
	"os"
	"strconv"
	"time"
)

// RelayConfig holds WebSocket relay configuration.
type RelayConfig struct {
	Addr            string        `json:"addr"`
	Path            string        `json:"path"`
	SweepInterval   time.Duration `json:"sweep_interval"`
	SweepNotify     bool          `json:"sweep_notify"`
	PingInterval    time.Duration `json:"ping_interval"`
	PongWait        time.Duration `json:"pong_wait"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	SendBufferSize  int           `json:"send_buffer_size"`
	ReadBufferSize  int           `json:"read_buffer_size"`
	WriteBufferSize int           `json:"write_buffer_size"`
	MaxMessageSize  int64         `json:"max_message_size"`
	LogLevel        string        `json:"log_level"`
}

// DefaultConfig returns the default relay configuration.
func DefaultConfig() *RelayConfig {
	return &RelayConfig{
		Addr:            ":8080",
		Path:            "/ws",
		SweepInterval:   30 * time.Second,
		PingInterval:    54 * time.Second,
		PongWait:        60 * time.Second,
		WriteTimeout:    10 * time.Second,
		SendBufferSize:  256,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxMessageSize:  64 * 1024,
		LogLevel:        "info",
	}
}

// FromEnv loads relay configuration from RELAY_* environment variables.
// Missing or unparsable values keep their defaults.
func FromEnv() *RelayConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("RELAY_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("RELAY_PATH"); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv("RELAY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.SweepInterval = envDuration("RELAY_SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.SweepNotify = envBool("RELAY_SWEEP_NOTIFY", cfg.SweepNotify)
	cfg.PingInterval = envDuration("RELAY_PING_INTERVAL", cfg.PingInterval)
	cfg.PongWait = envDuration("RELAY_PONG_WAIT", cfg.PongWait)
	cfg.WriteTimeout = envDuration("RELAY_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.SendBufferSize = envInt("RELAY_SEND_BUFFER", cfg.SendBufferSize)
	cfg.ReadBufferSize = envInt("RELAY_READ_BUFFER", cfg.ReadBufferSize)
	cfg.WriteBufferSize = envInt("RELAY_WRITE_BUFFER", cfg.WriteBufferSize)
	cfg.MaxMessageSize = int64(envInt("RELAY_MAX_MESSAGE_SIZE", int(cfg.MaxMessageSize)))

	// Pings must go out before the peer's read deadline expires.
	if cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	return cfg
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

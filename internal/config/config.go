package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the flat, env-driven server configuration. Every field has
// a working default so a bare `arena-server` starts locally.
type Config struct {
	Host string
	Port int

	WSAddr     string // WebSocket listener, "" disables it
	StatusAddr string // HTTP status listener, "" disables it

	ReadTimeout  time.Duration // per-frame idle limit before the connection is reclaimed
	WriteTimeout time.Duration

	RedisURL    string // "" disables the game archive
	DatabaseURL string // "" disables the Postgres result log

	MsgOverrideDir string
}

func Load() Config {
	cfg := Config{
		Host:         "0.0.0.0",
		Port:         5050,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("ARENA_HOST")); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < 65536 {
			cfg.Port = n
		}
	}
	cfg.WSAddr = strings.TrimSpace(os.Getenv("ARENA_WS_ADDR"))
	cfg.StatusAddr = strings.TrimSpace(os.Getenv("ARENA_STATUS_ADDR"))

	if v := strings.TrimSpace(os.Getenv("ARENA_READ_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ReadTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_WRITE_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.WriteTimeout = d
		}
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MsgOverrideDir = strings.TrimSpace(os.Getenv("ARENA_MSG_DIR"))

	return cfg
}

// Addr joins host and port for net.Listen.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != 5050 {
		t.Fatalf("port = %d", cfg.Port)
	}
	if cfg.ReadTimeout != 5*time.Minute {
		t.Fatalf("read timeout = %v", cfg.ReadTimeout)
	}
	if cfg.Addr() != "0.0.0.0:5050" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARENA_HOST", "127.0.0.1")
	t.Setenv("ARENA_PORT", "9000")
	t.Setenv("ARENA_READ_TIMEOUT", "30s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg := Load()
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Fatalf("read timeout = %v", cfg.ReadTimeout)
	}
	if cfg.RedisURL == "" {
		t.Fatalf("redis url not read")
	}
}

func TestBadValuesKeepDefaults(t *testing.T) {
	t.Setenv("ARENA_PORT", "not-a-port")
	t.Setenv("ARENA_READ_TIMEOUT", "-5s")

	cfg := Load()
	if cfg.Port != 5050 {
		t.Fatalf("port = %d", cfg.Port)
	}
	if cfg.ReadTimeout != 5*time.Minute {
		t.Fatalf("read timeout = %v", cfg.ReadTimeout)
	}
}

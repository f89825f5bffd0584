package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TEMPORAL_TASK_QUEUE", "bsr-queue")
	t.Setenv("SHEETS_SPREADSHEET_ID", "sheet-123")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TASK_STORE", "memory")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := Load()
	if cfg.Temporal.TaskQueue != "bsr-queue" {
		t.Errorf("task queue = %q", cfg.Temporal.TaskQueue)
	}
	if cfg.Temporal.Address != "localhost:7233" || cfg.Temporal.Namespace != "default" {
		t.Errorf("unexpected temporal defaults: %+v", cfg.Temporal)
	}
	if cfg.Temporal.ShutdownGrace != time.Minute {
		t.Errorf("shutdown grace = %v, want 1m", cfg.Temporal.ShutdownGrace)
	}
	s := cfg.Sheets
	if s.TableRange != "BUS!A1:D2" || s.AppendRange != "BUS!A5:C5" || s.SeatsCell != "BUS!D2" || s.SeatNoRange != "BUS!B5:B116" {
		t.Errorf("unexpected range defaults: %+v", s)
	}
	if s.OAuthPort != 8888 || s.TokensDir != "tokens" || s.Auth != "installed" {
		t.Errorf("unexpected credential defaults: %+v", s)
	}
	if cfg.TaskStore != TaskStoreMemory {
		t.Errorf("task store = %q", cfg.TaskStore)
	}
	if cfg.DBHost != "" {
		t.Errorf("db settings should be ignored for the memory store, got host %q", cfg.DBHost)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SHEETS_APPEND_RANGE", "BUS!A7:C7")
	t.Setenv("SHEETS_SEAT_NO_RANGE", "BUS!B7:B18")
	t.Setenv("SHEETS_AUTH", "DEFAULT")
	t.Setenv("WORKER_SHUTDOWN_GRACE", "15s")
	t.Setenv("SHEETS_OAUTH_PORT", "not-a-number")
	t.Setenv("AMQP_URL", "amqp://example/")

	cfg := Load()
	if cfg.Sheets.AppendRange != "BUS!A7:C7" || cfg.Sheets.SeatNoRange != "BUS!B7:B18" {
		t.Errorf("range overrides not applied: %+v", cfg.Sheets)
	}
	if cfg.Sheets.Auth != "default" {
		t.Errorf("auth = %q, want lower-cased default", cfg.Sheets.Auth)
	}
	if cfg.Temporal.ShutdownGrace != 15*time.Second {
		t.Errorf("shutdown grace = %v", cfg.Temporal.ShutdownGrace)
	}
	if cfg.Sheets.OAuthPort != 8888 {
		t.Errorf("invalid port should fall back to default, got %d", cfg.Sheets.OAuthPort)
	}
	if cfg.RabbitURL != "amqp://example/" {
		t.Errorf("rabbit url = %q", cfg.RabbitURL)
	}
}

func TestLoadMySQLStore(t *testing.T) {
	setRequired(t)
	t.Setenv("TASK_STORE", "mysql")
	t.Setenv("DB_USER", "bsr")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "reservations")

	cfg := Load()
	if cfg.DBUser != "bsr" || cfg.DBHost != "db" || cfg.DBPort != "3306" || cfg.DBName != "reservations" {
		t.Errorf("unexpected db config: %+v", cfg)
	}
}

func TestRateLimitNormalize(t *testing.T) {
	t.Setenv("RATE_LIMIT_START_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "3s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.StartCapacity != 1 {
		t.Errorf("start capacity = %d, want clamped to 1", cfg.StartCapacity)
	}
	if cfg.ReadCapacity != 30 || cfg.CompleteCapacity != 10 {
		t.Errorf("unexpected capacity defaults: %+v", cfg)
	}
	if cfg.TTL != 15*time.Second {
		t.Errorf("ttl = %v, want 5x refill interval", cfg.TTL)
	}
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TLS", "1")

	cfg := LoadRedisConfig()
	if cfg.Addr != "redis:6380" {
		t.Errorf("addr = %q, host/port should win", cfg.Addr)
	}
	if !cfg.TLS {
		t.Error("expected TLS enabled")
	}
}

func TestLoadTokenConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "-3")

	cfg := LoadTokenConfig()
	if cfg.Secret != "s" || cfg.TTLMin != 60 {
		t.Errorf("unexpected token config: %+v", cfg)
	}
}

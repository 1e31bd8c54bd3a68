package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GracePeriod != 30*time.Second {
		t.Errorf("expected 30s grace period, got %v", cfg.GracePeriod)
	}
	if cfg.QueueCapacity != 32 {
		t.Errorf("expected queue capacity 32, got %d", cfg.QueueCapacity)
	}
	if cfg.MaxInflightFrames != 4 {
		t.Errorf("expected 4 in-flight frames, got %d", cfg.MaxInflightFrames)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RELAY_GRACE_PERIOD_SECONDS", "5")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_DATABASE", "relay_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GracePeriod != 5*time.Second {
		t.Errorf("expected 5s grace period, got %v", cfg.GracePeriod)
	}
	if cfg.Addr() != "0.0.0.0:9000" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
	if cfg.DB.Database != "relay_test" {
		t.Errorf("unexpected database %q", cfg.DB.Database)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.GracePeriod = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero grace period")
	}
}

func TestConfig_WSURL(t *testing.T) {
	cfg := &Config{}
	if got := cfg.WSURL("room-1", "alice"); got != "/ws/translate/room-1/alice" {
		t.Errorf("unexpected path %q", got)
	}
	cfg.WSBaseURL = "wss://relay.example.com/"
	if got := cfg.WSURL("room-1", "alice"); got != "wss://relay.example.com/ws/translate/room-1/alice" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestConfig_DatabaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Host = "db"
	cfg.DB.Port = "5432"
	cfg.DB.User = "relay"
	cfg.DB.Password = "p@ss word"
	cfg.DB.Database = "waiwine"
	cfg.DB.SSLMode = "disable"
	want := "postgres://relay:p%40ss+word@db:5432/waiwine?sslmode=disable"
	if got := cfg.DatabaseURL(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

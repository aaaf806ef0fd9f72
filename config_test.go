package client

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.JournalCapacity != 8 {
		t.Fatalf("expected default journal capacity 8, got %d", cfg.JournalCapacity)
	}
	if cfg.JournalMaxAge != 5*time.Second {
		t.Fatalf("expected default journal max age 5s, got %v", cfg.JournalMaxAge)
	}
	if len(cfg.LogSinks) != 1 || cfg.LogSinks[0] != "console" {
		t.Fatalf("expected default console sink, got %v", cfg.LogSinks)
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DRIFTMAP_TENANT", "42")
	t.Setenv("DRIFTMAP_JOURNAL_CAPACITY", "16")
	t.Setenv("DRIFTMAP_JOURNAL_MAX_AGE", "30s")
	t.Setenv("DRIFTMAP_LOG_SINKS", "console,json")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Tenant != 42 {
		t.Fatalf("expected tenant 42, got %d", cfg.Tenant)
	}
	if cfg.JournalCapacity != 16 {
		t.Fatalf("expected capacity 16, got %d", cfg.JournalCapacity)
	}
	if cfg.JournalMaxAge != 30*time.Second {
		t.Fatalf("expected 30s max age, got %v", cfg.JournalMaxAge)
	}
	if len(cfg.LogSinks) != 2 || cfg.LogSinks[1] != "json" {
		t.Fatalf("expected two sinks, got %v", cfg.LogSinks)
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	t.Setenv("DRIFTMAP_JOURNAL_CAPACITY", "many")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse failure for non-numeric capacity")
	}
}

package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBPath != ":memory:" {
		t.Errorf("DBPath = %q, want :memory:", cfg.DBPath)
	}
	if cfg.DatasetPath != "teams_ratings.csv" {
		t.Errorf("DatasetPath = %q", cfg.DatasetPath)
	}
	if cfg.MaxDrawAttempts != 1000 {
		t.Errorf("MaxDrawAttempts = %d, want 1000", cfg.MaxDrawAttempts)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATASET_PATH", "/data/kenpom.csv")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,https://duel.example.com")
	t.Setenv("MAX_DRAW_ATTEMPTS", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTPAddr != ":9090" || cfg.DatasetPath != "/data/kenpom.csv" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://duel.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.MaxDrawAttempts != 25 {
		t.Errorf("MaxDrawAttempts = %d, want 25", cfg.MaxDrawAttempts)
	}
}

func TestLoadRejectsNonPositiveAttempts(t *testing.T) {
	t.Setenv("MAX_DRAW_ATTEMPTS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero attempts")
	}
}

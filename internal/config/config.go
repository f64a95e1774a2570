package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath          string        `env:"DB_PATH" envDefault:":memory:"`
	RedisURL        string        `env:"REDIS_URL"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	DatasetPath     string        `env:"DATASET_PATH" envDefault:"teams_ratings.csv"`
	MaxDrawAttempts int           `env:"MAX_DRAW_ATTEMPTS" envDefault:"1000"`
	LogLevel        slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir          string        `env:"SPA_DIR"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
	AdminTokenHash  string        `env:"ADMIN_TOKEN_HASH"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxDrawAttempts <= 0 {
		return nil, fmt.Errorf("MAX_DRAW_ATTEMPTS must be positive, got %d", cfg.MaxDrawAttempts)
	}
	return &cfg, nil
}

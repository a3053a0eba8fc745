package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT"        envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL"   envDefault:"info"`

	// LogLevel is parsed from LogLevelRaw.
	LogLevel slog.Level

	// RedisURL is a redis:// URL or host:port. Empty disables event broadcast.
	RedisURL string `env:"REDIS_URL"`

	ChoiceDelay   time.Duration `env:"CHOICE_DELAY"   envDefault:"600ms"`
	CompressDelay time.Duration `env:"COMPRESS_DELAY" envDefault:"1500ms"`

	// ScriptPath overrides the embedded narrative script.
	ScriptPath string `env:"SCRIPT_PATH"`

	// APIBaseURL points the console at a running API server instead of a
	// local engine.
	APIBaseURL string `env:"API_BASE_URL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if cfg.ChoiceDelay < 0 || cfg.CompressDelay < 0 {
		return nil, errors.New("delays must not be negative")
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

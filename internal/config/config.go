package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment, optionally seeded by a .env file.
type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	BaseURL         string        `envconfig:"BASE_URL"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty       bool          `envconfig:"LOG_PRETTY" default:"false"`
	TasksFile       string        `envconfig:"TASKS_FILE"`
	MaxViews        int           `envconfig:"MAX_VIEWS" default:"256"`
	DefaultDPR      float64       `envconfig:"DEFAULT_DPR" default:"1"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the given .env files, if present, then processes the
// environment. Variables already set win over the files.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if cfg.MaxViews < 1 {
		return Config{}, fmt.Errorf("MAX_VIEWS must be positive, got %d", cfg.MaxViews)
	}
	if cfg.DefaultDPR <= 0 {
		cfg.DefaultDPR = 1
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

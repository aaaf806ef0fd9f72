package client

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the session tunables. Defaults suit a single interactive
// client; deployments override via environment.
type Config struct {
	Tenant          int64         `env:"DRIFTMAP_TENANT"`
	PushURL         string        `env:"DRIFTMAP_PUSH_URL"`
	JournalCapacity int           `env:"DRIFTMAP_JOURNAL_CAPACITY" envDefault:"8"`
	JournalMaxAge   time.Duration `env:"DRIFTMAP_JOURNAL_MAX_AGE" envDefault:"5s"`
	LogSinks        []string      `env:"DRIFTMAP_LOG_SINKS" envSeparator:"," envDefault:"console"`
	LogBufferSize   int           `env:"DRIFTMAP_LOG_BUFFER" envDefault:"256"`
	LogJSONPath     string        `env:"DRIFTMAP_LOG_JSON_PATH"`
}

// DefaultConfig returns the built-in defaults without consulting the
// environment.
func DefaultConfig() Config {
	return Config{
		JournalCapacity: 8,
		JournalMaxAge:   5 * time.Second,
		LogSinks:        []string{"console"},
		LogBufferSize:   256,
	}
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

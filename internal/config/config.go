// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr          string `env:"ADDR" envDefault:":8080"`
	DatabaseDSN   string `env:"DATABASE_DSN" envDefault:"setpoint.db?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"`
	MigrationsURL string `env:"MIGRATIONS_URL" envDefault:"file://migrations"`

	ManagerUser     string `env:"MANAGER_USER" envDefault:"manager"`
	ManagerPassword string `env:"MANAGER_PASSWORD,required,notEmpty"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

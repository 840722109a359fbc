// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSecretLength is the shortest SECRET_KEY accepted for HMAC-SHA256 signing.
const MinSecretLength = 32

// Config contains server configuration parameters.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	DatabasePath string        `env:"DATABASE_PATH" envDefault:"thanku.db"`
	SecretKey    string        `env:"SECRET_KEY"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"10m"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"12"`
	LogLevel     slog.Level    `env:"LOG_LEVEL" envDefault:"info"`
	SignIn       SignIn        `envPrefix:"SIGNIN_"`
}

// SignIn holds the per-IP throttle applied to password attempts.
type SignIn struct {
	Rate  float64 `env:"RATE" envDefault:"0.2"`
	Burst float64 `env:"BURST" envDefault:"5"`
}

// New loads configuration from environment variables and validates it.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	} else if len(c.SecretKey) < MinSecretLength {
		errs = append(errs, fmt.Errorf("SECRET_KEY must be at least %d characters for HMAC-SHA256 security", MinSecretLength))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost))
	}
	if c.TokenTTL < time.Second {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be at least 1s, got %s", c.TokenTTL))
	}
	if c.SignIn.Rate < 0 || c.SignIn.Burst < 1 {
		errs = append(errs, errors.New("SIGNIN_RATE must be >= 0 and SIGNIN_BURST >= 1"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

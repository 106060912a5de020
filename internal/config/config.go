// Package config loads process configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"predictions.db"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// Timezone is the reference zone for close times typed without one.
	Timezone string `env:"TIMEZONE" envDefault:"America/Los_Angeles"`

	SlackSigningSecret string `env:"SLACK_SIGNING_SECRET"`

	JWTSecret  string `env:"JWT_SECRET,required"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"12"`
	// APIClients maps client ids to bcrypt hashes of their secrets, as
	// "id:hash,id:hash".
	APIClients map[string]string `env:"API_CLIENTS"`

	RateLimitPerMinute float64 `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Hashing is the configuration the hash-secret helper needs. It is loaded on
// its own so hashing a client secret does not require a full server setup.
type Hashing struct {
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`
}

// LoadHashing parses BCRYPT_COST, falling back to the server default.
func LoadHashing() (*Hashing, error) {
	var h Hashing
	if err := env.Parse(&h); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := checkBcryptCost(h.BcryptCost); err != nil {
		return nil, err
	}
	return &h, nil
}

func checkBcryptCost(cost int) error {
	if cost < 4 || cost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cost)
	}
	return nil
}

// Validate checks values the struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security"))
	}
	if err := checkBcryptCost(c.BcryptCost); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimitBurst))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location returns the reference timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Level maps LOG_LEVEL to a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

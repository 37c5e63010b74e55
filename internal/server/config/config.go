// Package config handles configuration for the reference API server,
// including defaults, JSON overlay, environment variables and command-line
// flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/validation"
)

const EnvPrefix = "GIGBOOK_SERVER_"

// Config holds runtime settings for the gigbook API server.
//
// Fields:
//   - Address: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps all data in memory.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes.
//   - ShutdownTimeout: how long in-flight requests get on SIGINT/SIGTERM.
type Config struct {
	Address         string        `env:"ADDRESS" validate:"required"`
	DatabaseDSN     string        `env:"DATABASE_DSN"`
	SecretKey       string        `env:"JWT_SECRET" validate:"required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" validate:"gt=0"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	LogLevel        string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden outside local runs.
func (c *Config) LoadDefaults() {
	c.Address = ":3000"
	c.SecretKey = "secretKey"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 30 * 24 * time.Hour
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, GIGBOOK_SERVER_* variables and finally
// command-line flags.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := validation.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Host            string        `env:"HOST"             envDefault:"0.0.0.0"`
	Port            int           `env:"PORT"             envDefault:"8000"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	DatabaseName    string        `env:"DATABASE_NAME"    envDefault:"whiskers"`
	StoreBackend    string        `env:"STORE_BACKEND"    envDefault:"mongo"`
	DataDir         string        `env:"DATA_DIR"         envDefault:"./data"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS"  envDefault:"*" envSeparator:","`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"       envDefault:"text"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"   envDefault:"1048576"`
	ProbeTimeout    time.Duration `env:"PROBE_TIMEOUT"    envDefault:"3s"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT"  envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables.
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

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.StoreBackend {
	case "mongo", "sqlite", "json", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// Addr is the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasDatabaseURL reports whether a database location is configured,
// without exposing it.
func (c *Config) HasDatabaseURL() bool {
	return c.DatabaseURL != ""
}

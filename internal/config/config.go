// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig is returned when environment values cannot be parsed
var ErrParsingConfig = errors.New("failed to parse config")

// Config holds settings shared by the binaries under cmd/
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"widget-token-service"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr    string `env:"GRPC_ADDR" envDefault:":50051"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// OTLPEndpoint enables trace export when set, e.g. "localhost:4318"
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// RedisURL makes the widget loader read its variables from Redis instead of the environment
	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"widget:"`

	Subject       string `env:"WIDGET_SUBJECT"`
	TokenEndpoint string `env:"TOKEN_ENDPOINT" envDefault:"http://localhost:8080/api/data/v9.2/new_GenerateInsideboardJWT"`
}

// Load reads .env (if present) and parses the environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return &cfg, nil
}

// Level converts LogLevel to a slog level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

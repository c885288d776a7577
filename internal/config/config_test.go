package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, "widget:", cfg.RedisPrefix)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":18080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WIDGET_SUBJECT", "user@example.com")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":18080", cfg.HTTPAddr)
	assert.Equal(t, "user@example.com", cfg.Subject)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	assert.ErrorIs(t, err, ErrParsingConfig)
}

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Wang-tianhao/widget-auth-go/bootstrap"
	"github.com/Wang-tianhao/widget-auth-go/internal/config"
	"github.com/Wang-tianhao/widget-auth-go/internal/observability"
	"github.com/Wang-tianhao/widget-auth-go/widgetauth"
)

// widgetloader resolves the widget configuration, fetches a token from the token
// service and writes the loader snippet to stdout.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := observability.NewLogger(os.Stderr, level)

	var identity bootstrap.IdentityResolver = bootstrap.EnvIdentity("WIDGET_SUBJECT")
	if cfg.Subject != "" {
		identity = bootstrap.StaticIdentity(cfg.Subject)
	}

	var variables bootstrap.VariableSource = bootstrap.EnvSource{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		variables = bootstrap.NewRedisSource(client, cfg.RedisPrefix)
	}

	loader := bootstrap.NewLoader(
		identity,
		variables,
		bootstrap.HTTPRequester{Endpoint: cfg.TokenEndpoint},
		bootstrap.HTMLInjector{Out: os.Stdout},
		bootstrap.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = widgetauth.WithRequestID(ctx, uuid.New().String())

	if _, err := loader.Run(ctx); err != nil {
		logger.Error("failed to initialize widget", "error", err)
		cancel()
		os.Exit(1)
	}
}

package widgetauth

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring the gateway
type Option func(*Gateway) error

// WithLogger sets a structured logger for issuance events
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		g.logger = logger
		return nil
	}
}

// WithTracerProvider sets the provider used for gateway and issuer spans.
// Without it the global OpenTelemetry provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(g *Gateway) error {
		if tp == nil {
			return fmt.Errorf("tracer provider cannot be nil")
		}
		g.tracerProvider = tp
		return nil
	}
}

// WithClock replaces time.Now as the source of the issuance instant
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		g.now = now
		return nil
	}
}

// NewGateway creates a gateway with the given options
func NewGateway(opts ...Option) (*Gateway, error) {
	g := &Gateway{
		now:            time.Now,
		tracerProvider: otel.GetTracerProvider(),
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, NewError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	g.issuer = NewIssuer(g.tracerProvider)
	g.tracer = g.tracerProvider.Tracer(tracerName)
	return g, nil
}

func (g *Gateway) Logger() *slog.Logger {
	return g.logger
}

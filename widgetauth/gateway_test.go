package widgetauth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestGateway(t *testing.T, opts ...Option) *Gateway {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	gw, err := NewGateway(opts...)
	if err != nil {
		t.Fatalf("Failed to create gateway: %v", err)
	}
	return gw
}

// TestGatewayValidation tests fail-fast validation of the two required inputs
func TestGatewayValidation(t *testing.T) {
	gw := newTestGateway(t)

	tests := []struct {
		name        string
		req         Request
		expectedErr ErrorCode
		message     string
	}{
		{
			name:        "missing subject",
			req:         Request{UserEmail: "", SecretKey: "k"},
			expectedErr: ErrMissingSubject,
			message:     "UserEmail parameter is required",
		},
		{
			name:        "missing secret",
			req:         Request{UserEmail: "a@b.com", SecretKey: ""},
			expectedErr: ErrMissingSecret,
			message:     "SecretKey parameter is required",
		},
		{
			name:        "both missing reports subject first",
			req:         Request{},
			expectedErr: ErrMissingSubject,
			message:     "UserEmail parameter is required",
		},
		{
			name: "valid request",
			req:  Request{UserEmail: "a@b.com", SecretKey: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := gw.Handle(context.Background(), tt.req)

			if tt.expectedErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !verifyHMAC(resp.JWT, []byte(tt.req.SecretKey)) {
					t.Errorf("returned token does not verify: %s", resp.JWT)
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error %s, got nil", tt.expectedErr)
			}
			if resp.JWT != "" {
				t.Errorf("expected empty response on failure, got %s", resp.JWT)
			}
			var gwErr *Error
			if !errors.As(err, &gwErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if gwErr.Code != tt.expectedErr {
				t.Errorf("expected error code %s, got %s", tt.expectedErr, gwErr.Code)
			}
			if gwErr.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, gwErr.Message)
			}
			if !IsValidation(err) {
				t.Error("expected IsValidation to be true")
			}
		})
	}
}

// TestGatewayMatchesIssuer tests that the gateway issues with its clock's instant
func TestGatewayMatchesIssuer(t *testing.T) {
	gw := newTestGateway(t)

	resp, err := gw.Handle(context.Background(), Request{UserEmail: "user@example.com", SecretKey: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, _ := Issue([]byte("secret"), "user@example.com", fixedNow)
	if resp.JWT != want {
		t.Errorf("gateway token = %s, want %s", resp.JWT, want)
	}
}

// TestGatewayWrapsIssuerFailure tests that issuer errors surface as one execution failure
func TestGatewayWrapsIssuerFailure(t *testing.T) {
	gw := newTestGateway(t)

	resp, err := gw.Handle(context.Background(), Request{UserEmail: "bad\xffsubject", SecretKey: "k"})
	if err == nil {
		t.Fatalf("expected error, got token %s", resp.JWT)
	}
	if resp.JWT != "" {
		t.Errorf("expected no token, got %s", resp.JWT)
	}

	var gwErr *Error
	if !errors.As(err, &gwErr) || gwErr.Code != ErrExecutionFailed {
		t.Fatalf("expected EXECUTION_FAILED, got %v", err)
	}
	if gwErr.Message != "error generating JWT: subject is not valid UTF-8" {
		t.Errorf("unexpected message: %s", gwErr.Message)
	}
	if IsValidation(err) {
		t.Error("execution failure must not be reported as validation error")
	}

	var cause *Error
	if !errors.As(gwErr.Unwrap(), &cause) || cause.Code != ErrEncoding {
		t.Errorf("expected wrapped ENCODING_ERROR, got %v", gwErr.Unwrap())
	}
}

// TestGatewayUsesCurrentTime tests the default clock
func TestGatewayUsesCurrentTime(t *testing.T) {
	gw, err := NewGateway()
	if err != nil {
		t.Fatalf("Failed to create gateway: %v", err)
	}

	before := time.Now().Unix()
	resp, err := gw.Handle(context.Background(), Request{UserEmail: "a@b.com", SecretKey: "k"})
	after := time.Now().Unix()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp, _ := decodeClaims(t, resp.JWT)["exp"].(float64)
	if int64(exp) < before+3600 || int64(exp) > after+3600 {
		t.Errorf("exp %d not within [%d, %d]", int64(exp), before+3600, after+3600)
	}
}

// TestGatewayConfigErrors tests option validation
func TestGatewayConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"nil clock", WithClock(nil)},
		{"nil tracer provider", WithTracerProvider(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGateway(tt.opt)
			if CodeOf(err) != ErrConfigError {
				t.Errorf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}

// TestGatewayLogging tests issuance events and that the secret never reaches the log
func TestGatewayLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	gw := newTestGateway(t, WithLogger(logger))

	secret := "very-secret-key-material"
	ctx := WithRequestID(context.Background(), "req-123")

	resp, err := gw.Handle(ctx, Request{UserEmail: "user@example.com", SecretKey: secret})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = gw.Handle(ctx, Request{UserEmail: "user@example.com"})

	out := buf.String()
	if strings.Contains(out, secret) {
		t.Error("log output contains the secret key")
	}
	if strings.Contains(out, resp.JWT) {
		t.Error("log output contains the full token")
	}
	for _, want := range []string{`"msg":"token issued"`, `"msg":"token issuance failed"`, `"request_id":"req-123"`, `"failure_reason":"MISSING_SECRET"`, `"subject":"user@example.com"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s\n%s", want, out)
		}
	}
}

// TestGatewayTracing tests that the gateway span parents the issuer span
func TestGatewayTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	gw := newTestGateway(t, WithTracerProvider(tp))

	if _, err := gw.Handle(context.Background(), Request{UserEmail: "a@b.com", SecretKey: "k"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	issueSpan, handleSpan := spans[0], spans[1]
	if issueSpan.Name() != "widgetauth.Issue" || handleSpan.Name() != "widgetauth.Gateway.Handle" {
		t.Fatalf("unexpected span names %s, %s", issueSpan.Name(), handleSpan.Name())
	}
	if issueSpan.Parent().SpanID() != handleSpan.SpanContext().SpanID() {
		t.Error("issuer span is not a child of the gateway span")
	}
}

// TestGatewayConcurrent tests that a shared gateway serves parallel callers
func TestGatewayConcurrent(t *testing.T) {
	gw := newTestGateway(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			secret := []byte{byte('a' + i%26)}
			resp, err := gw.Handle(context.Background(), Request{UserEmail: "a@b.com", SecretKey: string(secret)})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !verifyHMAC(resp.JWT, secret) {
				t.Errorf("token for secret %q does not verify", secret)
			}
		}(i)
	}
	wg.Wait()
}

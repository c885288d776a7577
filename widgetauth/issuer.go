package widgetauth

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/Wang-tianhao/widget-auth-go/widgetauth"

// Issuer builds HS256-signed widget tokens. It holds no key material and no mutable
// state, so a single Issuer may be shared by any number of goroutines.
type Issuer struct {
	tracer trace.Tracer
}

// NewIssuer returns an Issuer that records stage events on spans from tp.
// A nil tp uses the global OpenTelemetry tracer provider.
func NewIssuer(tp trace.TracerProvider) *Issuer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Issuer{tracer: tp.Tracer(tracerName)}
}

var untraced = NewIssuer(noop.NewTracerProvider())

// Issue returns header.claims.signature for subject, expiring TokenLifetime after now.
// The result depends only on its arguments: identical inputs give identical tokens.
func Issue(secret []byte, subject string, now time.Time) (string, error) {
	return untraced.Issue(context.Background(), secret, subject, now)
}

// Issue is the traced form of the package-level Issue.
func (i *Issuer) Issue(ctx context.Context, secret []byte, subject string, now time.Time) (string, error) {
	_, span := i.tracer.Start(ctx, "widgetauth.Issue")
	defer span.End()

	token, err := i.issue(span, secret, subject, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CodeOf(err)))
		return "", err
	}
	return token, nil
}

func (i *Issuer) issue(span trace.Span, secret []byte, subject string, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", NewError(ErrMissingSecret, "secret key must not be empty", nil)
	}
	if !utf8.Valid(secret) {
		return "", NewError(ErrEncoding, "secret key is not valid UTF-8", nil)
	}
	if !utf8.ValidString(subject) {
		return "", NewError(ErrEncoding, "subject is not valid UTF-8", nil)
	}

	claims := newClaims(subject, now)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Header and claims go through encoding/json, so any subject yields valid JSON.
	signingInput, err := token.SigningString()
	if err != nil {
		return "", NewError(ErrEncoding, "failed to encode token segments", err)
	}
	encodedHeader, encodedClaims, _ := strings.Cut(signingInput, ".")
	span.AddEvent("header encoded", trace.WithAttributes(attribute.Int("length", len(encodedHeader))))
	span.AddEvent("claims encoded", trace.WithAttributes(
		attribute.Int64("exp", claims.ExpiresAt),
		attribute.Int("length", len(encodedClaims)),
	))

	signature, err := token.Method.Sign(signingInput, secret)
	if err != nil {
		return "", NewError(ErrInternal, "failed to compute signature", err)
	}
	encodedSignature := token.EncodeSegment(signature)
	span.AddEvent("signature computed")

	return signingInput + "." + encodedSignature, nil
}

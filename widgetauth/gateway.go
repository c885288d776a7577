package widgetauth

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Request is the input of the GenerateInsideboardJWT operation.
// A missing field and an empty field are treated the same.
type Request struct {
	UserEmail string `json:"UserEmail"`
	SecretKey string `json:"SecretKey"`
}

// Response carries the issued token. It is only produced on success.
type Response struct {
	JWT string `json:"JWT"`
}

// Gateway validates token requests and hands them to the Issuer.
type Gateway struct {
	issuer         *Issuer
	logger         *slog.Logger
	now            func() time.Time
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
}

// Handle validates req, issues a token for req.UserEmail signed with req.SecretKey and
// returns it. Validation errors are returned as is; every issuer failure is wrapped in a
// single EXECUTION_FAILED error.
func (g *Gateway) Handle(ctx context.Context, req Request) (Response, error) {
	startTime := time.Now()
	requestID, _ := GetRequestID(ctx)

	ctx, span := g.tracer.Start(ctx, "widgetauth.Gateway.Handle")
	defer span.End()

	resp, exp, err := g.handle(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CodeOf(err)))
		logIssuanceEvent(g.logger, IssuanceEvent{
			EventType:     "failure",
			Timestamp:     time.Now(),
			RequestID:     requestID,
			Subject:       req.UserEmail,
			FailureReason: string(CodeOf(err)),
			Latency:       time.Since(startTime),
		})
		return Response{}, err
	}

	logIssuanceEvent(g.logger, IssuanceEvent{
		EventType:    "success",
		Timestamp:    time.Now(),
		RequestID:    requestID,
		Subject:      req.UserEmail,
		ExpiresAt:    exp,
		TokenPreview: resp.JWT,
		Latency:      time.Since(startTime),
	})
	return resp, nil
}

func (g *Gateway) handle(ctx context.Context, req Request) (Response, int64, error) {
	if req.UserEmail == "" {
		return Response{}, 0, NewError(ErrMissingSubject, "UserEmail parameter is required", nil)
	}
	if req.SecretKey == "" {
		return Response{}, 0, NewError(ErrMissingSecret, "SecretKey parameter is required", nil)
	}

	now := g.now()
	token, err := g.issuer.Issue(ctx, []byte(req.SecretKey), req.UserEmail, now)
	if err != nil {
		return Response{}, 0, NewError(ErrExecutionFailed, "error generating JWT: "+errorMessage(err), err)
	}

	return Response{JWT: token}, newClaims(req.UserEmail, now).ExpiresAt, nil
}

// errorMessage prefers the bare message of an *Error over its "[CODE] message" form
func errorMessage(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Message
	}
	return err.Error()
}

package widgetauth

import (
	"log/slog"
	"time"
)

// IssuanceEvent represents a structured log entry for one gateway call
type IssuanceEvent struct {
	EventType     string        // "success" or "failure"
	Timestamp     time.Time     // Event timestamp
	RequestID     string        // Correlation ID
	Subject       string        // Requested subject (may be empty on failure)
	ExpiresAt     int64         // exp claim of the issued token (success only)
	FailureReason string        // Error code (on failure)
	TokenPreview  string        // Redacted token preview
	Latency       time.Duration // Issuance latency
}

// LogValue implements slog.LogValuer for structured logging with redaction
func (e IssuanceEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("event", e.EventType),
		slog.Time("timestamp", e.Timestamp),
		slog.String("request_id", e.RequestID),
		slog.String("subject", e.Subject),
		slog.String("token", redactToken(e.TokenPreview)),
		slog.Duration("latency", e.Latency),
	}
	if e.ExpiresAt != 0 {
		attrs = append(attrs, slog.Int64("exp", e.ExpiresAt))
	}
	if e.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", e.FailureReason))
	}
	return slog.GroupValue(attrs...)
}

// redactToken keeps only the first 8 characters, which fall inside the constant header
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logIssuanceEvent emits an issuance event via the configured logger
func logIssuanceEvent(logger *slog.Logger, event IssuanceEvent) {
	if logger == nil {
		return // Logging disabled
	}

	if event.EventType == "failure" {
		logger.Warn("token issuance failed", "issuance", event)
	} else {
		logger.Info("token issued", "issuance", event)
	}
}

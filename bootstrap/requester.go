package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Wang-tianhao/widget-auth-go/widgetauth"
)

// TokenRequester obtains a signed token for subject
type TokenRequester interface {
	RequestToken(ctx context.Context, subject, secret string) (string, error)
}

// GatewayRequester issues tokens through an in-process gateway
type GatewayRequester struct {
	Gateway *widgetauth.Gateway
}

func (r GatewayRequester) RequestToken(ctx context.Context, subject, secret string) (string, error) {
	resp, err := r.Gateway.Handle(ctx, widgetauth.Request{UserEmail: subject, SecretKey: secret})
	if err != nil {
		return "", err
	}
	return resp.JWT, nil
}

// HTTPRequester calls a remote token endpoint served by widgetauth.TokenHandler
type HTTPRequester struct {
	Endpoint string
	Client   *http.Client
}

type errorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func (r HTTPRequester) RequestToken(ctx context.Context, subject, secret string) (string, error) {
	body, err := json.Marshal(widgetauth.Request{UserEmail: subject, SecretKey: secret})
	if err != nil {
		return "", fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id, ok := widgetauth.GetRequestID(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e errorBody
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return "", fmt.Errorf("token endpoint returned %s: [%s] %s", resp.Status, e.Reason, e.Message)
		}
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var out widgetauth.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if out.JWT == "" {
		return "", ErrNoToken
	}
	return out.JWT, nil
}

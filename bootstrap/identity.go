package bootstrap

import (
	"context"
	"fmt"
	"os"
)

// IdentityResolver yields the subject the widget token is issued for
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context) (string, error)
}

// StaticIdentity always resolves to itself
type StaticIdentity string

func (s StaticIdentity) ResolveIdentity(context.Context) (string, error) {
	return string(s), nil
}

// EnvIdentity reads the subject from an environment variable
type EnvIdentity string

func (e EnvIdentity) ResolveIdentity(context.Context) (string, error) {
	v, ok := os.LookupEnv(string(e))
	if !ok {
		return "", fmt.Errorf("%s: %w", string(e), ErrVariableNotFound)
	}
	return v, nil
}

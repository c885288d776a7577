package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Logical names of the host environment variables the widget depends on
const (
	InstanceVariable   = "new_insideboard_instance"
	WidgetCodeVariable = "new_insideboard_widgetcode"
	SecretKeyVariable  = "new_insideboard_secretkey"
)

// ErrVariableNotFound is returned when a variable has no value
var ErrVariableNotFound = errors.New("variable not found")

// VariableSource resolves a configuration value by logical name
type VariableSource interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// MapSource serves variables from a map
type MapSource map[string]string

func (m MapSource) Lookup(_ context.Context, name string) (string, error) {
	v, ok := m[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%s: %w", name, ErrVariableNotFound)
	}
	return v, nil
}

// EnvSource reads variables from the process environment. The logical name is
// upper-cased and appended to Prefix: new_insideboard_instance -> NEW_INSIDEBOARD_INSTANCE.
type EnvSource struct {
	Prefix string
}

func (s EnvSource) Lookup(_ context.Context, name string) (string, error) {
	key := s.Prefix + strings.ToUpper(name)
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%s: %w", key, ErrVariableNotFound)
	}
	return v, nil
}

// redisGetter is the subset of *redis.Client used by RedisSource
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads variables stored as plain string keys, e.g. "widget:new_insideboard_instance"
type RedisSource struct {
	client redisGetter
	prefix string
}

// NewRedisSource returns a source reading prefix+name keys through client
func NewRedisSource(client redisGetter, prefix string) *RedisSource {
	return &RedisSource{client: client, prefix: prefix}
}

func (s *RedisSource) Lookup(ctx context.Context, name string) (string, error) {
	key := s.prefix + name
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && v == "") {
		return "", fmt.Errorf("%s: %w", key, ErrVariableNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

// Package bootstrap resolves everything the Insideboard widget needs from the host
// environment, obtains a token for the current user and renders the widget loader.
//
// The sequence is a linear pipeline: resolve identity, resolve instance, resolve widget
// code, resolve secret, issue token, inject script. Stages run in that order, a failing
// stage stops the run with a *StageError naming it, and nothing is retried.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"
)

// Stage names a step of the bootstrap pipeline
type Stage string

const (
	StageIdentity   Stage = "resolve identity"
	StageInstance   Stage = "resolve instance"
	StageWidgetCode Stage = "resolve widget code"
	StageSecret     Stage = "resolve secret"
	StageToken      Stage = "issue token"
	StageInject     Stage = "inject script"
)

var (
	ErrEmptyIdentity   = errors.New("current user identity is empty")
	ErrInvalidInstance = errors.New("instance must be a single DNS label")
	ErrNoToken         = errors.New("token endpoint returned no JWT")
)

// StageError reports the stage at which a bootstrap run stopped
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("bootstrap: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Config is the resolved widget configuration, passed explicitly through the pipeline
type Config struct {
	Instance   string
	WidgetCode string
	Token      string
}

// Widget is the outcome of a successful bootstrap run
type Widget struct {
	Config
	Subject string
}

// APIHost is the widget's API origin
func (w Widget) APIHost() string {
	return "https://" + w.Instance + ".insideboard.com"
}

// ScriptURL is the loader script for the configured widget
func (w Widget) ScriptURL() string {
	return w.APIHost() + "/insideboard.js?id=" + url.QueryEscape(w.WidgetCode)
}

// Command is one call queued on the widget's global function
type Command struct {
	Name string
	Arg  any
}

// Commands returns the initialization calls in the order the widget expects them
func (w Widget) Commands() []Command {
	return []Command{
		{Name: "init", Arg: map[string]string{"apiHost": w.APIHost(), "widgetCode": w.WidgetCode}},
		{Name: "authenticate", Arg: w.Token},
		{Name: "setConfig", Arg: map[string]bool{"isAnimationEnabled": true}},
	}
}

var instancePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)

// Loader runs the bootstrap pipeline. A Loader keeps no state between runs.
type Loader struct {
	identity  IdentityResolver
	variables VariableSource
	tokens    TokenRequester
	injector  ScriptInjector
	logger    *slog.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLogger logs stage progress to logger
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader wires the pipeline collaborators
func NewLoader(identity IdentityResolver, variables VariableSource, tokens TokenRequester, injector ScriptInjector, opts ...LoaderOption) *Loader {
	l := &Loader{
		identity:  identity,
		variables: variables,
		tokens:    tokens,
		injector:  injector,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes every stage in order and returns the injected widget
func (l *Loader) Run(ctx context.Context) (*Widget, error) {
	var (
		w      Widget
		secret string
	)

	stages := []struct {
		stage Stage
		run   func(context.Context) error
	}{
		{StageIdentity, func(ctx context.Context) (err error) {
			w.Subject, err = l.identity.ResolveIdentity(ctx)
			if err == nil && w.Subject == "" {
				err = ErrEmptyIdentity
			}
			return err
		}},
		{StageInstance, func(ctx context.Context) (err error) {
			w.Instance, err = l.variables.Lookup(ctx, InstanceVariable)
			if err == nil && !instancePattern.MatchString(w.Instance) {
				err = fmt.Errorf("%w: %q", ErrInvalidInstance, w.Instance)
			}
			return err
		}},
		{StageWidgetCode, func(ctx context.Context) (err error) {
			w.WidgetCode, err = l.variables.Lookup(ctx, WidgetCodeVariable)
			return err
		}},
		{StageSecret, func(ctx context.Context) (err error) {
			secret, err = l.variables.Lookup(ctx, SecretKeyVariable)
			return err
		}},
		{StageToken, func(ctx context.Context) (err error) {
			w.Token, err = l.tokens.RequestToken(ctx, w.Subject, secret)
			secret = ""
			if err == nil && w.Token == "" {
				err = ErrNoToken
			}
			return err
		}},
		{StageInject, func(ctx context.Context) error {
			return l.injector.Inject(ctx, w)
		}},
	}

	for _, s := range stages {
		started := time.Now()
		err := ctx.Err()
		if err == nil {
			err = s.run(ctx)
		}
		if err != nil {
			l.log(slog.LevelError, "bootstrap stage failed", s.stage, started, slog.String("error", err.Error()))
			return nil, &StageError{Stage: s.stage, Err: err}
		}
		l.log(slog.LevelDebug, "bootstrap stage completed", s.stage, started)
	}

	l.log(slog.LevelInfo, "widget initialized", StageInject, time.Time{},
		slog.String("instance", w.Instance),
		slog.String("widget_code", w.WidgetCode),
	)
	return &w, nil
}

func (l *Loader) log(level slog.Level, msg string, stage Stage, started time.Time, attrs ...slog.Attr) {
	if l.logger == nil {
		return
	}
	attrs = append(attrs, slog.String("stage", string(stage)))
	if !started.IsZero() {
		attrs = append(attrs, slog.Duration("latency", time.Since(started)))
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/pluginkit/internal/access"
	"github.com/holomush/pluginkit/internal/message"
	"github.com/holomush/pluginkit/pkg/errutil"
)

var tracer = otel.Tracer("pluginkit/command")

// Root is a root command: a registry of token handlers plus the dispatch,
// completion, and help paths over it. Safe for concurrent use.
type Root struct {
	name        string
	registry    *Registry
	perms       access.PermissionChecker
	messages    message.Formatter
	rateLimiter *RateLimiter // optional, can be nil
	logger      *slog.Logger
}

// Option configures a Root during construction.
type Option func(*Root)

// WithMessages sets the formatter used for player-facing text.
// Defaults to message.Defaults.
func WithMessages(f message.Formatter) Option {
	return func(r *Root) {
		r.messages = f
	}
}

// WithRateLimiter enables per-sender rate limiting.
// If not provided, rate limiting is disabled.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(r *Root) {
		r.rateLimiter = rl
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Root) {
		r.logger = l
	}
}

// New builds a Root for cmd. The built-in help handler is registered
// first, then cmd's declarations. Any malformed declaration fails with a
// CONTRACT_VIOLATION error and the Root must not be used.
func New(cmd Command, perms access.PermissionChecker, opts ...Option) (*Root, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}
	if perms == nil {
		return nil, ErrNilPermissions
	}

	name := cmd.Name()
	if err := ValidateRootName(name); err != nil {
		return nil, ErrContractViolation(name, name, err.Error())
	}

	r := &Root{
		name:     name,
		perms:    perms,
		messages: message.Defaults{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	reg, err := newRegistry(name, r.logger,
		r.builtins(),
		registrySource{name: name, handlers: cmd.Handlers(), completers: cmd.Completers()},
	)
	if err != nil {
		return nil, err
	}
	r.registry = reg
	return r, nil
}

// MustNew is New that panics on error. For package-level declarations
// whose contract is fixed at compile time.
func MustNew(cmd Command, perms access.PermissionChecker, opts ...Option) *Root {
	r, err := New(cmd, perms, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the root command name.
func (r *Root) Name() string { return r.name }

// Registry returns the read-only registry.
func (r *Root) Registry() *Registry { return r.registry }

// Dispatch runs a command and reports whether it was handled, which is
// always true: every invocation produces some outcome for the sender.
func (r *Root) Dispatch(ctx context.Context, sender Sender, label string, args []string) bool {
	return r.Execute(ctx, sender, label, args).Handled
}

// Execute runs a command and returns its full outcome. Failures are
// reported to the sender and in Result.Err; nothing raised by a handler
// escapes.
func (r *Root) Execute(ctx context.Context, sender Sender, label string, args []string) (res Result) {
	res.Handled = true
	if len(args) == 0 {
		return res
	}
	token := args[0]

	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.root", r.name),
			attribute.String("command.name", token),
			attribute.String("sender.subject", sender.Subject()),
		),
	)
	metrics := NewMetricsRecorder()
	defer func() {
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		span.End()
		metrics.Record()
	}()

	h, found := r.registry.ResolveExecute(token)
	if found {
		metrics.SetCommand(h.Token, h.Source)
		span.SetAttributes(attribute.String("command.source", h.Source))
	} else {
		metrics.SetCommand(unknownCommandLabel, r.name)
	}

	// Rate limiting applies before lookup so unknown tokens count too.
	if r.rateLimiter != nil && !r.perms.HasPermission(ctx, sender.Subject(), PermissionRateLimitBypass) {
		if allowed, cooldownMs := r.rateLimiter.Allow(sender.Subject()); !allowed {
			span.SetAttributes(attribute.Bool("command.rate_limited", true))
			span.SetAttributes(attribute.Int64("command.cooldown_ms", cooldownMs))
			metrics.SetStatus(StatusRateLimited)
			sender.SendMessage(r.messages.Format(MsgRateLimited, cooldownMs))
			res.Err = ErrRateLimited(cooldownMs)
			return res
		}
	}

	if !found {
		metrics.SetStatus(StatusNotFound)
		sender.SendMessage(r.messages.Format(MsgUnknownCommand, r.name))
		res.Err = ErrUnknownCommand(token)
		return res
	}

	if h.Permission != "" && !r.perms.HasPermission(ctx, sender.Subject(), h.Permission) {
		metrics.SetStatus(StatusPermissionDenied)
		sender.SendMessage(r.messages.Format(MsgNoPermission))
		res.Err = ErrPermissionDenied(token, h.Permission)
		return res
	}

	event := &Event{Sender: sender, Label: label, Args: args}
	ok, err := invokeHandler(ctx, h, event)
	switch {
	case err == nil:
		res.Success = ok
		if ok {
			metrics.SetStatus(StatusSuccess)
		} else {
			metrics.SetStatus(StatusRejected)
		}
	case errutil.HasCode(err, CodeInvalidArgs):
		metrics.SetStatus(StatusInvalidArgs)
		sender.SendMessage(r.messages.Format(MsgInvalidFormat, r.name))
		res.Err = err
	default:
		err = ErrHandlerFailure(token, err)
		metrics.SetStatus(StatusError)
		errutil.LogError(ctx, r.logger, slog.LevelWarn, "command execution failed", err)
		sender.SendMessage(r.messages.Format(MsgInvalidCommand, r.name))
		res.Err = err
	}
	return res
}

// invokeHandler calls h, converting a panic into an error. Index and slice
// bounds panics mean the handler read past the supplied arguments.
func invokeHandler(ctx context.Context, h Handler, event *Event) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = recoveredError(h.Token, p)
		}
	}()
	return h.Execute(ctx, event)
}

func recoveredError(token string, p any) error {
	if re, ok := p.(runtime.Error); ok && strings.Contains(re.Error(), "out of range") {
		return oops.Code(CodeInvalidArgs).
			With("command", token).
			Wrapf(re, "not enough arguments")
	}
	if err, ok := p.(error); ok {
		return oops.With("command", token).Wrapf(err, "handler panicked")
	}
	return oops.With("command", token).Errorf("handler panicked: %s", fmt.Sprint(p))
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package command provides token-routed subcommands under a single root
// command: registry, dispatch, completion, and paginated help.
package command

import (
	"context"
	"errors"
)

// SourceCore marks handlers built into every root command.
const SourceCore = "core"

// ErrNoConstraint is returned by a CompleterFunc that places no constraint
// on the next argument. The completion result for it is empty.
var ErrNoConstraint = errors.New("no completion constraint")

// Sender is whoever issued a command.
type Sender interface {
	// Subject is the stable identity used for permission checks and rate
	// limiting, e.g. "player:01ABC" or "console".
	Subject() string
	// Name is the display name.
	Name() string
	// SendMessage delivers text to the sender.
	SendMessage(msg string)
}

// Event is a single command invocation. Args[0] is the matched token.
type Event struct {
	Sender Sender
	Label  string
	Args   []string
}

// Token returns Args[0], or "" when there are no arguments.
func (e *Event) Token() string {
	if len(e.Args) == 0 {
		return ""
	}
	return e.Args[0]
}

// Arg returns Args[i]. An out-of-range index returns an INVALID_ARGS error,
// which the dispatcher reports as a usage problem.
func (e *Event) Arg(i int) (string, error) {
	if i < 0 || i >= len(e.Args) {
		return "", ErrInvalidArgs(e.Token(), i)
	}
	return e.Args[i], nil
}

// Reply sends msg to the event's sender.
func (e *Event) Reply(msg string) {
	e.Sender.SendMessage(msg)
}

// HandlerFunc performs a subcommand. The bool is the canonical success
// signal; false means the invocation was understood but rejected.
type HandlerFunc func(ctx context.Context, event *Event) (bool, error)

// CompleterFunc proposes candidates for the argument being typed. Return
// ErrNoConstraint when any value is acceptable.
type CompleterFunc func(ctx context.Context, event *Event) ([]string, error)

// Handler binds a token to its execute function.
type Handler struct {
	Token       string      // routing key, matched exactly against Args[0]
	Usage       string      // usage hint shown in help, e.g. "<player>"
	Description string      // one-line help text
	Permission  string      // required permission; empty means none
	Source      string      // "core" or the owning command's name
	Execute     HandlerFunc // the bound handler
}

// Completer binds a token to its completion function.
type Completer struct {
	Token      string
	Permission string
	Source     string
	Complete   CompleterFunc
}

// Command is a root command supplied by a plugin author.
type Command interface {
	// Name is the root command name, e.g. "example".
	Name() string
	// Handlers lists the subcommands in registration order.
	Handlers() []Handler
	// Completers lists the completion functions in registration order.
	Completers() []Completer
}

// Result is the outcome of one Execute call.
type Result struct {
	// Handled is always true; every invocation yields some outcome.
	Handled bool
	// Success is the handler's return value. False when no handler ran.
	Success bool
	// Err is set when the invocation failed before or inside the handler.
	Err error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package script loads root commands declared in sandboxed Lua.
//
// A script declares a global commands table:
//
//	commands = {
//	  { token = "greet", usage = "<player>", description = "Greets a player",
//	    permission = "example.greet",
//	    execute = function(event) event:reply("hi " .. event:arg(1)) return true end,
//	    complete = function(event) return { "alice", "bob" } end },
//	}
//
// Each invocation runs on a fresh state, so scripts keep no state between
// calls.
package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/pluginkit/internal/command"
)

// Compile-time interface check.
var _ command.Command = (*Command)(nil)

const commandsGlobal = "commands"

// Option configures script loading.
type Option func(*loader)

type loader struct {
	factory *StateFactory
	timeout time.Duration
}

// WithTimeout bounds each execute or complete call. Zero means no bound
// beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(l *loader) {
		l.timeout = d
	}
}

// WithStateFactory overrides the sandbox used for every state.
func WithStateFactory(f *StateFactory) Option {
	return func(l *loader) {
		l.factory = f
	}
}

// Command is a root command whose handlers are Lua functions.
type Command struct {
	name       string
	handlers   []command.Handler
	completers []command.Completer
}

// Name implements command.Command.
func (c *Command) Name() string { return c.name }

// Handlers implements command.Command.
func (c *Command) Handlers() []command.Handler { return c.handlers }

// Completers implements command.Command.
func (c *Command) Completers() []command.Completer { return c.completers }

// LoadFile loads a script whose root name is the file's base name without
// its extension.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Command, error) {
	code, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.In("lua").With("path", path).With("operation", "load").Hint("failed to read script").Wrap(err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Load(ctx, name, string(code), opts...)
}

// Load compiles source and reads its commands table. Declarations whose
// execute or complete fields are not functions fail with a
// CONTRACT_VIOLATION error. Token validity is checked later by
// command.New.
func Load(ctx context.Context, name, source string, opts ...Option) (*Command, error) {
	l := &loader{factory: NewStateFactory()}
	for _, opt := range opts {
		opt(l)
	}

	L, err := l.factory.NewState(ctx)
	if err != nil {
		return nil, oops.In("lua").With("script", name).With("operation", "load").Hint("failed to create state").Wrap(err)
	}
	defer L.Close()

	if err := L.DoString(source); err != nil {
		return nil, oops.In("lua").With("script", name).With("operation", "load").Hint("syntax error").Wrap(err)
	}

	decls, ok := L.GetGlobal(commandsGlobal).(*lua.LTable)
	if !ok {
		return nil, command.ErrContractViolation(name, commandsGlobal, "commands must be a table")
	}

	cmd := &Command{name: name}
	for i := 1; i <= decls.Len(); i++ {
		decl, ok := decls.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, command.ErrContractViolation(name, commandsGlobal, "entry is not a table")
		}
		token, ok := decl.RawGetString("token").(lua.LString)
		if !ok {
			return nil, command.ErrContractViolation(name, "", "token must be a string")
		}
		ref := declRef{loader: l, script: name, source: source, index: i, token: string(token)}
		permission := optionalString(decl, "permission")

		if _, ok := decl.RawGetString("execute").(*lua.LFunction); !ok {
			return nil, command.ErrContractViolation(name, ref.token, "execute must be a function")
		}
		cmd.handlers = append(cmd.handlers, command.Handler{
			Token:       ref.token,
			Usage:       optionalString(decl, "usage"),
			Description: optionalString(decl, "description"),
			Permission:  permission,
			Execute:     ref.execute,
		})

		switch decl.RawGetString("complete").(type) {
		case *lua.LNilType:
		case *lua.LFunction:
			cmd.completers = append(cmd.completers, command.Completer{
				Token:      ref.token,
				Permission: permission,
				Complete:   ref.complete,
			})
		default:
			return nil, command.ErrContractViolation(name, ref.token, "complete must be a function")
		}
	}
	return cmd, nil
}

func optionalString(t *lua.LTable, field string) string {
	if s, ok := t.RawGetString(field).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// declRef locates one declaration so it can be re-read on a fresh state.
type declRef struct {
	loader *loader
	script string
	source string
	index  int
	token  string
}

func (d declRef) execute(ctx context.Context, event *command.Event) (bool, error) {
	ret, err := d.call(ctx, "execute", event)
	if err != nil {
		return false, err
	}
	b, ok := ret.(lua.LBool)
	if !ok {
		return false, oops.In("lua").
			With("script", d.script).
			With("command", d.token).
			Errorf("execute returned %s, want boolean", ret.Type())
	}
	return bool(b), nil
}

func (d declRef) complete(ctx context.Context, event *command.Event) ([]string, error) {
	ret, err := d.call(ctx, "complete", event)
	if err != nil {
		return nil, err
	}
	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, command.ErrNoConstraint
	case *lua.LTable:
		out := make([]string, 0, v.Len())
		for i := 1; i <= v.Len(); i++ {
			out = append(out, lua.LVAsString(v.RawGetInt(i)))
		}
		return out, nil
	default:
		return nil, oops.In("lua").
			With("script", d.script).
			With("command", d.token).
			Errorf("complete returned %s, want table or nil", ret.Type())
	}
}

// call runs the named field of the declaration on a fresh state and
// returns its single result. When the script dies on an error raised by
// event:arg, that argument error is returned as is so the dispatcher
// reports a usage problem. An arg error caught with pcall does not count.
func (d declRef) call(ctx context.Context, field string, event *command.Event) (lua.LValue, error) {
	if d.loader.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.loader.timeout)
		defer cancel()
	}

	L, err := d.loader.factory.NewState(ctx)
	if err != nil {
		return nil, err
	}
	defer L.Close()

	if err := L.DoString(d.source); err != nil {
		return nil, oops.In("lua").With("script", d.script).With("operation", field).Hint("failed to load code").Wrap(err)
	}

	fn, err := d.lookup(L, field)
	if err != nil {
		return nil, err
	}

	var argErr error
	eventTable := buildEventTable(L, event, &argErr)
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, eventTable); err != nil {
		if raisedByArg(err, argErr) {
			return nil, argErr
		}
		return nil, oops.In("lua").With("script", d.script).With("command", d.token).With("operation", field).Wrap(err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// raisedByArg reports whether err is the Lua error event:arg raised for
// argErr.
func raisedByArg(err, argErr error) bool {
	if argErr == nil {
		return false
	}
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Object == lua.LString(argErr.Error())
}

// lookup re-resolves the declaration's function. A script whose top level
// rebuilds commands differently on each run is rejected here.
func (d declRef) lookup(L *lua.LState, field string) (*lua.LFunction, error) {
	decls, ok := L.GetGlobal(commandsGlobal).(*lua.LTable)
	if !ok {
		return nil, command.ErrContractViolation(d.script, d.token, "commands table disappeared")
	}
	decl, ok := decls.RawGetInt(d.index).(*lua.LTable)
	if !ok {
		return nil, command.ErrContractViolation(d.script, d.token, "declaration disappeared")
	}
	fn, ok := decl.RawGetString(field).(*lua.LFunction)
	if !ok {
		return nil, command.ErrContractViolation(d.script, d.token, field+" must be a function")
	}
	return fn, nil
}

// buildEventTable exposes the invocation to Lua. Arguments are read with
// event:arg(i), zero-based like the Go API, where arg(0) is the token.
func buildEventTable(L *lua.LState, event *command.Event, argErr *error) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "label", lua.LString(event.Label))
	L.SetField(t, "token", lua.LString(event.Token()))
	L.SetField(t, "sender", lua.LString(event.Sender.Name()))
	L.SetField(t, "subject", lua.LString(event.Sender.Subject()))

	args := L.NewTable()
	for _, a := range event.Args {
		args.Append(lua.LString(a))
	}
	L.SetField(t, "args", args)
	L.SetField(t, "argc", lua.LNumber(len(event.Args)))

	L.SetField(t, "arg", L.NewFunction(func(L *lua.LState) int {
		i := L.CheckInt(2)
		v, err := event.Arg(i)
		if err != nil {
			*argErr = err
			L.Error(lua.LString(err.Error()), 0)
			return 0
		}
		L.Push(lua.LString(v))
		return 1
	}))
	L.SetField(t, "reply", L.NewFunction(func(L *lua.LState) int {
		event.Reply(L.CheckString(2))
		return 0
	}))
	return t
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pluginkit/internal/access/accesstest"
	"github.com/holomush/pluginkit/internal/command"
	"github.com/holomush/pluginkit/internal/command/commandtest"
	"github.com/holomush/pluginkit/internal/message"
	"github.com/holomush/pluginkit/internal/script"
	"github.com/holomush/pluginkit/pkg/errutil"
)

const greeterSource = `
commands = {
  {
    token = "greet",
    usage = "<player>",
    description = "Greets a player",
    permission = "greeter.greet",
    execute = function(event)
      event:reply("hi " .. event:arg(1) .. " from " .. event.sender)
      return true
    end,
    complete = function(event)
      return { "alice", "bob", "carol" }
    end,
  },
  {
    token = "shrug",
    description = "Always declines",
    execute = function(event) return false end,
    complete = function(event) return nil end,
  },
  {
    token = "count",
    execute = function(event)
      counter = (counter or 0) + 1
      event:reply(tostring(counter) .. "/" .. tostring(event.argc))
      return true
    end,
  },
}
`

func loadRoot(t *testing.T, name, source string, opts ...script.Option) *command.Root {
	t.Helper()
	cmd, err := script.Load(context.Background(), name, source, opts...)
	require.NoError(t, err)
	root, err := command.New(cmd, accesstest.AllowAll{})
	require.NoError(t, err)
	return root
}

func TestLoad_ReadsDeclarations(t *testing.T) {
	cmd, err := script.Load(context.Background(), "greeter", greeterSource)
	require.NoError(t, err)

	assert.Equal(t, "greeter", cmd.Name())
	require.Len(t, cmd.Handlers(), 3)
	greet := cmd.Handlers()[0]
	assert.Equal(t, "greet", greet.Token)
	assert.Equal(t, "<player>", greet.Usage)
	assert.Equal(t, "Greets a player", greet.Description)
	assert.Equal(t, "greeter.greet", greet.Permission)
	assert.Empty(t, cmd.Handlers()[2].Usage)

	require.Len(t, cmd.Completers(), 2)
	assert.Equal(t, "greet", cmd.Completers()[0].Token)
	assert.Equal(t, "greeter.greet", cmd.Completers()[0].Permission)
	assert.Equal(t, "shrug", cmd.Completers()[1].Token)
}

func TestLoad_ContractViolations(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"no commands table", `x = 1`},
		{"commands not a table", `commands = "nope"`},
		{"entry not a table", `commands = { 42 }`},
		{"token not a string", `commands = { { token = 7, execute = function() return true end } }`},
		{"execute missing", `commands = { { token = "a" } }`},
		{"execute not a function", `commands = { { token = "a", execute = 5 } }`},
		{"complete not a function", `commands = { { token = "a", execute = function() return true end, complete = "x" } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := script.Load(context.Background(), "broken", tt.source)
			errutil.AssertErrorCode(t, err, command.CodeContractViolation)
		})
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	_, err := script.Load(context.Background(), "broken", `commands = {`)
	require.Error(t, err)
	errutil.AssertErrorContext(t, err, "script", "broken")
}

func TestLoad_InvalidTokenRejectedByRoot(t *testing.T) {
	cmd, err := script.Load(context.Background(), "greeter",
		`commands = { { token = "two words", execute = function() return true end } }`)
	require.NoError(t, err)

	_, err = command.New(cmd, accesstest.AllowAll{})
	errutil.AssertErrorCode(t, err, command.CodeContractViolation)
}

func TestLoadFile_UsesBaseName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greeter.lua")
	require.NoError(t, os.WriteFile(path, []byte(greeterSource), 0o600))

	cmd, err := script.LoadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "greeter", cmd.Name())
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := script.LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.lua"))
	require.Error(t, err)
}

func TestExecute_RepliesAndSucceeds(t *testing.T) {
	root := loadRoot(t, "greeter", greeterSource)
	sender := commandtest.NewNamedSender("player:1", "Alice")

	res := root.Execute(context.Background(), sender, "greeter", []string{"greet", "bob"})

	require.NoError(t, res.Err)
	assert.True(t, res.Handled)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"hi bob from Alice"}, sender.Messages())
}

func TestExecute_FalseReturnIsRejection(t *testing.T) {
	root := loadRoot(t, "greeter", greeterSource)
	sender := commandtest.NewSender("player:1")

	res := root.Execute(context.Background(), sender, "greeter", []string{"shrug"})

	require.NoError(t, res.Err)
	assert.False(t, res.Success)
	assert.Empty(t, sender.Messages())
}

func TestExecute_MissingArgumentIsInvalidArgs(t *testing.T) {
	root := loadRoot(t, "greeter", greeterSource)
	sender := commandtest.NewSender("player:1")

	res := root.Execute(context.Background(), sender, "greeter", []string{"greet"})

	errutil.AssertErrorCode(t, res.Err, command.CodeInvalidArgs)
	assert.Equal(t, []string{message.Defaults{}.Format(command.MsgInvalidFormat, "greeter")}, sender.Messages())
}

func TestExecute_CaughtArgumentErrorDoesNotFailInvocation(t *testing.T) {
	source := `commands = { { token = "a", execute = function(e)
  local ok = pcall(e.arg, e, 5)
  e:reply(tostring(ok))
  return true
end } }`
	root := loadRoot(t, "lenient", source)
	sender := commandtest.NewSender("player:1")

	res := root.Execute(context.Background(), sender, "lenient", []string{"a"})

	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"false"}, sender.Messages())
}

func TestExecute_FreshStatePerInvocation(t *testing.T) {
	root := loadRoot(t, "greeter", greeterSource)
	sender := commandtest.NewSender("player:1")

	root.Execute(context.Background(), sender, "greeter", []string{"count"})
	root.Execute(context.Background(), sender, "greeter", []string{"count", "x"})

	assert.Equal(t, []string{"1/1", "1/2"}, sender.Messages())
}

func TestExecute_HandlerFailures(t *testing.T) {
	tests := []struct {
		name   string
		source string
		opts   []script.Option
	}{
		{
			name:   "non-boolean return",
			source: `commands = { { token = "a", execute = function() return "yes" end } }`,
		},
		{
			name:   "no return",
			source: `commands = { { token = "a", execute = function() end } }`,
		},
		{
			name:   "runtime error",
			source: `commands = { { token = "a", execute = function() error("boom") end } }`,
		},
		{
			name:   "argument error caught before an unrelated failure",
			source: `commands = { { token = "a", execute = function(e) pcall(e.arg, e, 5) error("unrelated failure") end } }`,
		},
		{
			name:   "sandboxed library",
			source: `commands = { { token = "a", execute = function() os.exit(1) return true end } }`,
		},
		{
			name:   "timeout",
			source: `commands = { { token = "a", execute = function() while true do end end } }`,
			opts:   []script.Option{script.WithTimeout(50 * time.Millisecond)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := loadRoot(t, "broken", tt.source, tt.opts...)
			sender := commandtest.NewSender("player:1")

			res := root.Execute(context.Background(), sender, "broken", []string{"a"})

			assert.True(t, res.Handled)
			assert.False(t, res.Success)
			errutil.AssertErrorCode(t, res.Err, command.CodeHandlerFailure)
			assert.Equal(t, []string{message.Defaults{}.Format(command.MsgInvalidCommand, "broken")}, sender.Messages())
		})
	}
}

func TestExecute_PermissionFromScript(t *testing.T) {
	cmd, err := script.Load(context.Background(), "greeter", greeterSource)
	require.NoError(t, err)
	root, err := command.New(cmd, accesstest.DenyAll{})
	require.NoError(t, err)
	sender := commandtest.NewSender("player:1")

	res := root.Execute(context.Background(), sender, "greeter", []string{"greet", "bob"})

	errutil.AssertErrorCode(t, res.Err, command.CodePermissionDenied)
}

func TestComplete_FiltersScriptCandidates(t *testing.T) {
	root := loadRoot(t, "greeter", greeterSource)
	sender := commandtest.NewSender("player:1")

	got := root.Complete(context.Background(), sender, "greeter", []string{"greet", "A"})

	assert.Equal(t, []string{"alice", "carol"}, got)
}

func TestComplete_NilMeansNoConstraint(t *testing.T) {
	root := loadRoot(t, "greeter", greeterSource)
	sender := commandtest.NewSender("player:1")

	got := root.Complete(context.Background(), sender, "greeter", []string{"shrug", ""})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestComplete_BadReturnIsEmpty(t *testing.T) {
	root := loadRoot(t, "broken", `commands = { {
		token = "a",
		execute = function() return true end,
		complete = function() return 12 end,
	} }`)
	sender := commandtest.NewSender("player:1")

	got := root.Complete(context.Background(), sender, "broken", []string{"a", ""})

	assert.Empty(t, got)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package example

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/pluginkit/internal/access/accesstest"
	"github.com/holomush/pluginkit/internal/clock"
	"github.com/holomush/pluginkit/internal/command"
	"github.com/holomush/pluginkit/internal/command/commandtest"
	"github.com/holomush/pluginkit/internal/config"
	"github.com/holomush/pluginkit/internal/message"
	"github.com/holomush/pluginkit/internal/scheduler"
	"github.com/holomush/pluginkit/pkg/errutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testHost struct {
	cfg     *config.Config
	msgs    *message.Catalog
	reloads int
	failure error
}

func (h *testHost) Config() *config.Config     { return h.cfg }
func (h *testHost) Messages() *message.Catalog { return h.msgs }

func (h *testHost) Reload() error {
	h.reloads++
	if h.failure != nil {
		return h.failure
	}
	if err := h.cfg.Reload(); err != nil {
		return err
	}
	return h.msgs.Reload()
}

type fixture struct {
	host  *testHost
	root  *command.Root
	loop  *scheduler.TickLoop
	perms *accesstest.Mock
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "config.yml"), ConfigRecords()...)
	require.NoError(t, err)
	msgs, err := message.Open(filepath.Join(dir, "messages.yml"),
		append(command.CoreMessages(), MessageRecords()...)...)
	require.NoError(t, err)

	loop := scheduler.NewTickLoop(clock.Fake(time.Unix(0, 0)), "test", nil)
	pool := scheduler.NewPool(nil, 1, nil)
	t.Cleanup(pool.Close)
	sched, err := scheduler.New(scheduler.NewLocalHost(loop, pool))
	require.NoError(t, err)

	host := &testHost{cfg: cfg, msgs: msgs}
	perms := accesstest.NewMock()
	root, err := command.New(New(host, sched), perms, command.WithMessages(msgs))
	require.NoError(t, err)

	return &fixture{host: host, root: root, loop: loop, perms: perms, dir: dir}
}

func (f *fixture) run(sender *commandtest.Sender, args ...string) command.Result {
	return f.root.Execute(context.Background(), sender, Name, args)
}

func TestExample_Registration(t *testing.T) {
	f := newFixture(t)

	tokens := f.root.Registry().Tokens()
	assert.ElementsMatch(t, []string{"help", "test", "hello", "reload", "ping"}, tokens)

	h, ok := f.root.Registry().ResolveExecute("reload")
	require.True(t, ok)
	assert.Equal(t, PermissionReload, h.Permission)
	assert.Equal(t, Name, h.Source)
}

func TestExample_TestPrintsConfigString(t *testing.T) {
	f := newFixture(t)
	sender := commandtest.NewSender("player:1")

	res := f.run(sender, "test")

	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"Hello, World!"}, sender.Messages())
}

func TestExample_Hello(t *testing.T) {
	f := newFixture(t)

	t.Run("greets the named player", func(t *testing.T) {
		sender := commandtest.NewSender("player:1")
		res := f.run(sender, "hello", "Steve")
		require.NoError(t, res.Err)
		assert.True(t, res.Success)
		assert.Equal(t, []string{"Hello, Steve!"}, sender.Messages())
	})

	t.Run("too many arguments is rejected", func(t *testing.T) {
		sender := commandtest.NewSender("player:1")
		res := f.run(sender, "hello", "Steve", "Alex")
		require.NoError(t, res.Err)
		assert.False(t, res.Success)
		assert.Empty(t, sender.Messages())
	})

	t.Run("missing player is invalid format", func(t *testing.T) {
		sender := commandtest.NewSender("player:1")
		res := f.run(sender, "hello")
		errutil.AssertErrorCode(t, res.Err, command.CodeInvalidArgs)
		assert.Equal(t,
			[]string{"This command format is not valid. Please use /example help for more info."},
			sender.Messages())
	})
}

func TestExample_HelloCompletion(t *testing.T) {
	f := newFixture(t)
	sender := commandtest.NewSender("player:1")

	assert.Empty(t, f.root.Complete(context.Background(), sender, Name, []string{"hello", "St"}))
	assert.Empty(t, f.root.Complete(context.Background(), sender, Name, []string{"hello", "Steve", ""}))
	assert.Equal(t, []string{"hello", "help"},
		f.root.Complete(context.Background(), sender, Name, []string{"he"}))
}

func TestExample_ReloadRequiresPermission(t *testing.T) {
	f := newFixture(t)
	sender := commandtest.NewSender("player:1")

	res := f.run(sender, "reload")

	errutil.AssertErrorCode(t, res.Err, command.CodePermissionDenied)
	assert.Equal(t, 0, f.host.reloads)
	assert.Equal(t, []string{"You don't have permission to use this command"}, sender.Messages())
}

func TestExample_ReloadPicksUpEdits(t *testing.T) {
	f := newFixture(t)
	sender := commandtest.NewSender("player:1")
	f.perms.Grant("player:1", PermissionReload)

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "config.yml"),
		[]byte("example:\n  string: Edited\n"), 0o600))

	res := f.run(sender, "reload")
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, f.host.reloads)
	assert.Equal(t, "Config reloaded!", sender.Last())

	f.run(sender, "test")
	assert.Equal(t, "Edited", sender.Last())
}

func TestExample_ReloadFailure(t *testing.T) {
	f := newFixture(t)
	f.host.failure = assert.AnError
	sender := commandtest.NewSender("player:1")
	f.perms.Grant("player:1", PermissionReload)

	res := f.run(sender, "reload")

	errutil.AssertErrorCode(t, res.Err, command.CodeHandlerFailure)
	assert.Equal(t, "This command is invalid. Please use /example help to see all commands.", sender.Last())
}

func TestExample_PingCooldown(t *testing.T) {
	f := newFixture(t)
	alice := commandtest.NewSender("player:alice")
	bob := commandtest.NewSender("player:bob")

	assert.True(t, f.run(alice, "ping").Success)
	assert.Equal(t, "Pong!", alice.Last())

	res := f.run(alice, "ping")
	require.NoError(t, res.Err)
	assert.False(t, res.Success)
	assert.Equal(t, "You pinged recently. The cooldown is 5s.", alice.Last())

	assert.True(t, f.run(bob, "ping").Success, "cooldowns are per sender")

	for range 100 {
		f.loop.Tick()
	}
	assert.True(t, f.run(alice, "ping").Success)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package example is a small root command exercising config, messages,
// cooldowns, and permissions.
package example

import (
	"context"
	"time"

	"github.com/holomush/pluginkit/internal/command"
	"github.com/holomush/pluginkit/internal/config"
	"github.com/holomush/pluginkit/internal/cooldown"
	"github.com/holomush/pluginkit/internal/message"
	"github.com/holomush/pluginkit/internal/scheduler"
)

// Name is the root command name.
const Name = "example"

// PermissionReload is required to run "reload".
const PermissionReload = "example.reload"

// Config records.
var (
	ConfigString       = config.Record[string]{Path: "example.string", Default: "Hello, World!"}
	ConfigPingCooldown = config.Record[int]{Path: "example.ping-cooldown-ticks", Default: 100}
)

// Message records.
var (
	MsgHello          = message.New("message.hello", "Hello, <%>!", "player")
	MsgConfigReloaded = message.New("message.config-reloaded", "Config reloaded!")
	MsgPong           = message.New("message.pong", "Pong!")
	MsgPingCooldown   = message.New("message.ping-cooldown",
		"You pinged recently. The cooldown is <%>.", "cooldown")
)

// ConfigRecords returns every config record the command reads.
func ConfigRecords() []config.Entry {
	return []config.Entry{ConfigString, ConfigPingCooldown}
}

// MessageRecords returns every message record the command formats.
func MessageRecords() []message.Record {
	return []message.Record{MsgHello, MsgConfigReloaded, MsgPong, MsgPingCooldown}
}

// Host is what the command needs from its owning plugin.
type Host interface {
	Config() *config.Config
	Messages() *message.Catalog
	Reload() error
}

// Command is the "example" root command.
type Command struct {
	host  Host
	pings *cooldown.Set[string]
}

var _ command.Command = (*Command)(nil)

// New creates the command. Ping cooldowns are expired through sched.
func New(host Host, sched cooldown.Scheduler) *Command {
	return &Command{
		host:  host,
		pings: cooldown.New[string](sched),
	}
}

// Name implements command.Command.
func (c *Command) Name() string { return Name }

// Handlers implements command.Command.
func (c *Command) Handlers() []command.Handler {
	return []command.Handler{
		{Token: "test", Description: "Test command", Execute: c.test},
		{Token: "hello", Usage: "<player>", Description: "Hello command", Execute: c.hello},
		{Token: "reload", Description: "Reload command", Permission: PermissionReload, Execute: c.reload},
		{Token: "ping", Description: "Ping with a cooldown", Execute: c.ping},
	}
}

// Completers implements command.Command.
func (c *Command) Completers() []command.Completer {
	return []command.Completer{
		{Token: "hello", Complete: c.completeHello},
	}
}

func (c *Command) test(_ context.Context, event *command.Event) (bool, error) {
	event.Reply(config.Get(c.host.Config(), ConfigString))
	return true, nil
}

// hello greets exactly one player.
func (c *Command) hello(_ context.Context, event *command.Event) (bool, error) {
	if len(event.Args) > 2 {
		return false, nil
	}
	player, err := event.Arg(1)
	if err != nil {
		return false, err
	}
	event.Reply(c.host.Messages().Format(MsgHello, player))
	return true, nil
}

// completeHello accepts any player name for the first argument and
// nothing after it.
func (c *Command) completeHello(_ context.Context, event *command.Event) ([]string, error) {
	if len(event.Args) == 2 {
		return nil, command.ErrNoConstraint
	}
	return []string{}, nil
}

func (c *Command) reload(_ context.Context, event *command.Event) (bool, error) {
	if err := c.host.Reload(); err != nil {
		return false, err
	}
	event.Reply(c.host.Messages().Format(MsgConfigReloaded))
	return true, nil
}

func (c *Command) ping(_ context.Context, event *command.Event) (bool, error) {
	subject := event.Sender.Subject()
	ticks := int64(config.Get(c.host.Config(), ConfigPingCooldown))
	if c.pings.IsOnCooldown(subject) {
		period := scheduler.TicksToDuration(ticks).Round(time.Second)
		event.Reply(c.host.Messages().Format(MsgPingCooldown, period))
		return false, nil
	}
	c.pings.Add(subject, ticks)
	event.Reply(c.host.Messages().Format(MsgPong))
	return true, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package plugin ties a plugin's config, messages, scheduler, and root
// commands to its enable/disable lifecycle.
package plugin

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/samber/oops"

	"github.com/holomush/pluginkit/internal/access"
	"github.com/holomush/pluginkit/internal/command"
	"github.com/holomush/pluginkit/internal/config"
	"github.com/holomush/pluginkit/internal/message"
	"github.com/holomush/pluginkit/internal/scheduler"
)

// File names under the data directory.
const (
	ConfigFile   = "config.yml"
	MessagesFile = "messages.yml"
	ScriptsDir   = "scripts"
)

// Error codes for lifecycle failures.
const (
	CodeInvalidOptions = "INVALID_OPTIONS"
	CodeNotEnabled     = "NOT_ENABLED"
	CodeAlreadyEnabled = "ALREADY_ENABLED"
)

// Options configures a Plugin.
type Options struct {
	// Name is the plugin name. Its lowercase form is the fallback prefix
	// for registered commands.
	Name string
	// DataDir holds config.yml and messages.yml. Empty keeps both in memory.
	DataDir string
	// Host is the scheduling host, probed once on Enable.
	Host any
	// Permissions checks sender permissions for every registered command.
	Permissions access.PermissionChecker
	// ConfigRecords are seeded into config.yml.
	ConfigRecords []config.Entry
	// MessageRecords are seeded into messages.yml alongside the core messages.
	MessageRecords []message.Record
	// WatchConfig reloads config.yml whenever it changes on disk.
	WatchConfig bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// RateLimiter, when set, throttles every registered command.
	RateLimiter *command.RateLimiter
}

// Plugin is one enabled unit of commands and resources.
type Plugin struct {
	opts    Options
	logger  *slog.Logger
	enabled atomic.Bool
	// lifecycle serializes Enable and Disable.
	lifecycle sync.Mutex

	mu    sync.RWMutex
	cfg   *config.Config
	msgs  *message.Catalog
	sched *scheduler.Scheduler
	roots map[string]*command.Root
}

// New validates opts and returns a disabled Plugin.
func New(opts Options) (*Plugin, error) {
	if err := command.ValidateRootName(opts.Name); err != nil {
		return nil, oops.Code(CodeInvalidOptions).With("plugin", opts.Name).Wrapf(err, "invalid plugin name")
	}
	if opts.Permissions == nil {
		return nil, oops.Code(CodeInvalidOptions).With("plugin", opts.Name).Errorf("permission checker cannot be nil")
	}
	if opts.Host == nil {
		return nil, oops.Code(CodeInvalidOptions).With("plugin", opts.Name).Errorf("host cannot be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Plugin{
		opts:   opts,
		logger: logger.With("plugin", opts.Name),
		roots:  make(map[string]*command.Root),
	}, nil
}

// Name returns the plugin name.
func (p *Plugin) Name() string { return p.opts.Name }

// Prefix returns the fallback prefix used when registering commands.
func (p *Plugin) Prefix() string { return strings.ToLower(p.opts.Name) }

// Enable probes the host backend and loads config and messages.
func (p *Plugin) Enable(ctx context.Context) error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.enabled.Load() {
		return oops.Code(CodeAlreadyEnabled).With("plugin", p.opts.Name).Errorf("plugin already enabled")
	}

	sched, err := scheduler.New(p.opts.Host)
	if err != nil {
		return oops.With("plugin", p.opts.Name).Wrapf(err, "detect scheduler backend")
	}

	cfg, err := config.Load(p.dataPath(ConfigFile), p.opts.ConfigRecords...)
	if err != nil {
		return oops.With("plugin", p.opts.Name).Wrapf(err, "load config")
	}
	records := append(command.CoreMessages(), p.opts.MessageRecords...)
	msgs, err := message.Open(p.dataPath(MessagesFile), records...)
	if err != nil {
		return oops.With("plugin", p.opts.Name).Wrapf(err, "load messages")
	}

	if p.opts.WatchConfig && p.opts.DataDir != "" {
		if err := cfg.Document().Watch(p.onConfigChange); err != nil {
			return oops.With("plugin", p.opts.Name).Wrapf(err, "watch config")
		}
	}

	p.mu.Lock()
	p.sched = sched
	p.cfg = cfg
	p.msgs = msgs
	p.mu.Unlock()
	p.enabled.Store(true)

	p.logger.InfoContext(ctx, "plugin enabled",
		"backend", sched.Kind().String(),
		"data_dir", p.opts.DataDir)
	return nil
}

func (p *Plugin) onConfigChange(err error) {
	if err != nil {
		p.logger.Warn("config reload failed", "error", err)
		return
	}
	p.logger.Info("config reloaded from disk")
}

// dataPath returns name under the data directory, or "" for in-memory use.
func (p *Plugin) dataPath(name string) string {
	if p.opts.DataDir == "" {
		return ""
	}
	return filepath.Join(p.opts.DataDir, name)
}

// Reload re-reads config.yml and messages.yml, then writes both back so
// defaults removed from disk reappear. Registered commands see the new
// values immediately.
func (p *Plugin) Reload() error {
	if !p.enabled.Load() {
		return p.errNotEnabled()
	}
	p.mu.RLock()
	cfg, msgs := p.cfg, p.msgs
	p.mu.RUnlock()

	if err := cfg.Reload(); err != nil {
		return oops.With("plugin", p.opts.Name).Wrapf(err, "reload config")
	}
	if err := msgs.Reload(); err != nil {
		return oops.With("plugin", p.opts.Name).Wrapf(err, "reload messages")
	}
	if err := cfg.Save(); err != nil {
		return oops.With("plugin", p.opts.Name).Wrapf(err, "save config")
	}
	if err := msgs.Save(); err != nil {
		return oops.With("plugin", p.opts.Name).Wrapf(err, "save messages")
	}
	p.logger.Info("plugin reloaded")
	return nil
}

// Config returns the plugin config. Nil before Enable.
func (p *Plugin) Config() *config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Messages returns the message catalog. Nil before Enable.
func (p *Plugin) Messages() *message.Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.msgs
}

// Scheduler returns the scheduler facade. Nil before Enable.
func (p *Plugin) Scheduler() *scheduler.Scheduler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sched
}

// RegisterCommand builds a root for cmd and registers it with cm under
// the plugin's prefix.
func (p *Plugin) RegisterCommand(cm CommandMap, cmd command.Command) (*command.Root, error) {
	if !p.enabled.Load() {
		return nil, p.errNotEnabled()
	}

	opts := []command.Option{
		command.WithMessages(p.Messages()),
		command.WithLogger(p.logger),
	}
	if p.opts.RateLimiter != nil {
		opts = append(opts, command.WithRateLimiter(p.opts.RateLimiter))
	}
	root, err := command.New(cmd, p.opts.Permissions, opts...)
	if err != nil {
		return nil, err
	}

	if !cm.Register(p.Prefix(), root) {
		p.logger.Warn("command label taken, registered with prefix only",
			"command", root.Name(),
			"label", p.Prefix()+":"+root.Name())
	}

	p.mu.Lock()
	p.roots[root.Name()] = root
	p.mu.Unlock()
	return root, nil
}

// Commands returns the roots registered by this plugin.
func (p *Plugin) Commands() map[string]*command.Root {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]*command.Root, len(p.roots))
	for name, r := range p.roots {
		out[name] = r
	}
	return out
}

// Enabled reports whether the plugin is enabled.
func (p *Plugin) Enabled() bool { return p.enabled.Load() }

// Disable marks the plugin disabled and stops watching config. Tasks
// wrapped with Guard become no-ops. Safe to call more than once.
func (p *Plugin) Disable() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if !p.enabled.CompareAndSwap(true, false) {
		return
	}
	if cfg := p.Config(); cfg != nil {
		if err := cfg.Document().Close(); err != nil {
			p.logger.Warn("stop config watch failed", "error", err)
		}
	}
	p.logger.Info("plugin disabled")
}

// Guard wraps task so it only runs while the plugin is enabled.
func (p *Plugin) Guard(task scheduler.Task) scheduler.Task {
	return func() {
		if p.enabled.Load() {
			task()
		}
	}
}

func (p *Plugin) errNotEnabled() error {
	return oops.Code(CodeNotEnabled).With("plugin", p.opts.Name).Errorf("plugin not enabled")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/holomush/pluginkit/internal/access"
	"github.com/holomush/pluginkit/internal/clock"
	"github.com/holomush/pluginkit/internal/command"
	"github.com/holomush/pluginkit/internal/example"
	"github.com/holomush/pluginkit/internal/logging"
	"github.com/holomush/pluginkit/internal/observability"
	"github.com/holomush/pluginkit/internal/plugin"
	"github.com/holomush/pluginkit/internal/scheduler"
	"github.com/holomush/pluginkit/internal/script"
)

// pluginName is the name of the embedded example plugin.
const pluginName = "Example"

// scriptTimeout bounds each Lua execute or complete call.
const scriptTimeout = 2 * time.Second

// host wires the example plugin to an in-process scheduler, permission
// table, and optional metrics server.
type host struct {
	cfg      *hostConfig
	logger   *slog.Logger
	plugin   *plugin.Plugin
	commands *plugin.Commands
	loop     *scheduler.TickLoop
	pool     *scheduler.Pool
	limiter  *command.RateLimiter
	obs      *observability.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// newHost builds and enables everything. Logs go to logOut. Call close
// when done.
func newHost(ctx context.Context, cfg *hostConfig, logOut io.Writer) (h *host, err error) {
	logger := logging.Setup(logging.Options{
		Service: "pluginkit",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	}, logOut)

	perms, err := loadPermissions(cfg.RolesFile)
	if err != nil {
		return nil, err
	}

	clk := clock.Real()
	h = &host{
		cfg:      cfg,
		logger:   logger,
		commands: plugin.NewCommands(),
		loop:     scheduler.NewTickLoop(clk, "main", logger),
		pool:     scheduler.NewPool(clk, scheduler.DefaultPoolSize, logger),
	}
	defer func() {
		if err != nil {
			h.close(context.Background())
			h = nil
		}
	}()

	var schedHost any
	switch cfg.Backend {
	case backendRegion:
		schedHost = scheduler.NewLocalRegionHost(h.loop, h.pool)
	default:
		schedHost = scheduler.NewLocalHost(h.loop, h.pool)
	}

	if cfg.RateLimit {
		h.limiter = command.NewRateLimiter(command.RateLimiterConfig{
			BurstCapacity: cfg.RateBurst,
			SustainedRate: cfg.RatePerSec,
		})
	}

	h.plugin, err = plugin.New(plugin.Options{
		Name:           pluginName,
		DataDir:        cfg.DataDir,
		Host:           schedHost,
		Permissions:    perms,
		ConfigRecords:  example.ConfigRecords(),
		MessageRecords: example.MessageRecords(),
		WatchConfig:    cfg.WatchConfig,
		Logger:         logger,
		RateLimiter:    h.limiter,
	})
	if err != nil {
		return h, err
	}

	if cfg.MetricsAddr != "" {
		h.obs = observability.NewServer(cfg.MetricsAddr, logger, h.plugin.Enabled,
			command.RegisterMetrics,
			scheduler.RegisterMetrics,
		)
		if err := h.obs.Start(); err != nil {
			h.obs = nil
			return h, fmt.Errorf("failed to start observability server: %w", err)
		}
	}

	if err := h.plugin.Enable(ctx); err != nil {
		return h, fmt.Errorf("failed to enable plugin: %w", err)
	}
	if h.obs != nil {
		h.obs.Metrics().PluginsEnabled.Inc()
	}

	if _, err := h.plugin.RegisterCommand(h.commands, example.New(h.plugin, h.plugin.Scheduler())); err != nil {
		return h, fmt.Errorf("failed to register example command: %w", err)
	}

	mgr := plugin.NewManager(h.plugin, plugin.WithScriptOptions(script.WithTimeout(scriptTimeout)))
	if err := mgr.LoadAll(ctx, h.commands); err != nil {
		return h, fmt.Errorf("failed to load scripts: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.loop.Run(loopCtx)
	}()

	logger.Info("host ready",
		"backend", cfg.Backend,
		"scripts", mgr.ListScripts(),
		"labels", h.commands.Labels())
	return h, nil
}

// loadPermissions reads the roles file, or falls back to the default
// roles with no subject assignments.
func loadPermissions(path string) (*access.StaticPermissions, error) {
	if path == "" {
		return access.NewStaticPermissions(), nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open roles file: %w", err)
	}
	defer func() { _ = f.Close() }()

	perms, err := access.LoadRoles(f)
	if err != nil {
		return nil, fmt.Errorf("load roles file %s: %w", path, err)
	}
	return perms, nil
}

// close disables the plugin and stops every background goroutine.
func (h *host) close(ctx context.Context) {
	if h.plugin != nil && h.plugin.Enabled() {
		h.plugin.Disable()
		if h.obs != nil {
			h.obs.Metrics().PluginsEnabled.Dec()
		}
	}
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
	h.pool.Close()
	if h.limiter != nil {
		h.limiter.Close()
	}
	if h.obs != nil {
		if err := h.obs.Stop(ctx); err != nil {
			h.logger.Warn("error stopping observability server", "error", err)
		}
	}
}

// recordLine counts a console line by routing result.
func (h *host) recordLine(result string) {
	if h.obs != nil {
		h.obs.Metrics().LinesTotal.WithLabelValues(result).Inc()
	}
}

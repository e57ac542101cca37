// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/pluginkit/internal/script"
)

// scriptExt marks files the Manager loads.
const scriptExt = ".lua"

// Manager discovers Lua command scripts and registers each one as a root
// command of its plugin.
type Manager struct {
	plugin     *Plugin
	scriptsDir string
	scriptOpts []script.Option
	loaded     map[string]*DiscoveredScript
	mu         sync.RWMutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithScriptsDir overrides the scripts directory. Defaults to the
// plugin's data directory plus "scripts".
func WithScriptsDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.scriptsDir = dir
	}
}

// WithScriptOptions passes options to every script.Load call.
func WithScriptOptions(opts ...script.Option) ManagerOption {
	return func(m *Manager) {
		m.scriptOpts = append(m.scriptOpts, opts...)
	}
}

// NewManager creates a script manager for p.
func NewManager(p *Plugin, opts ...ManagerOption) *Manager {
	m := &Manager{
		plugin:     p,
		scriptsDir: p.dataPath(ScriptsDir),
		loaded:     make(map[string]*DiscoveredScript),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DiscoveredScript is a script file and the root name derived from it.
type DiscoveredScript struct {
	Name string
	Path string
}

// Discover lists the scripts in the scripts directory in name order.
// A missing directory yields no scripts.
func (m *Manager) Discover(_ context.Context) ([]*DiscoveredScript, error) {
	if m.scriptsDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(m.scriptsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, oops.In("plugin").With("dir", m.scriptsDir).Wrapf(err, "failed to read scripts directory")
	}

	var scripts []*DiscoveredScript
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != scriptExt {
			continue
		}
		scripts = append(scripts, &DiscoveredScript{
			Name: strings.TrimSuffix(entry.Name(), scriptExt),
			Path: filepath.Join(m.scriptsDir, entry.Name()),
		})
	}
	return scripts, nil
}

// LoadAll discovers every script and registers it with cm. A script that
// fails to load or register is logged and skipped so one broken script
// does not take down the others.
func (m *Manager) LoadAll(ctx context.Context, cm CommandMap) error {
	discovered, err := m.Discover(ctx)
	if err != nil {
		return err
	}

	for _, ds := range discovered {
		if err := m.loadScript(ctx, cm, ds); err != nil {
			m.plugin.logger.ErrorContext(ctx, "failed to load script",
				"script", ds.Name,
				"path", ds.Path,
				"error", err)
			continue
		}
	}
	return nil
}

func (m *Manager) loadScript(ctx context.Context, cm CommandMap, ds *DiscoveredScript) error {
	cmd, err := script.LoadFile(ctx, ds.Path, m.scriptOpts...)
	if err != nil {
		return err
	}
	if _, err := m.plugin.RegisterCommand(cm, cmd); err != nil {
		return err
	}

	m.mu.Lock()
	m.loaded[ds.Name] = ds
	m.mu.Unlock()

	m.plugin.logger.InfoContext(ctx, "loaded script",
		"script", ds.Name,
		"commands", len(cmd.Handlers()))
	return nil
}

// ListScripts returns the names of loaded scripts in ascending order.
func (m *Manager) ListScripts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.loaded))
	for name := range m.loaded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

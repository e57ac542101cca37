// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/holomush/pluginkit/internal/access"
	"github.com/holomush/pluginkit/internal/xdg"
)

// Backends accepted by --backend.
const (
	backendTick   = "tick"
	backendRegion = "region"
)

// Default values for host flags.
const (
	defaultBackend   = backendTick
	defaultLogFormat = "text"
	defaultLogLevel  = "info"
	defaultSubject   = access.SubjectConsole
	defaultRateBurst = 10
	defaultRateRate  = 2.0
)

// hostConfig holds configuration shared by every subcommand. Values come
// from the --config file, overridden by flags set on the command line.
type hostConfig struct {
	DataDir     string  `koanf:"data-dir"`
	Persist     bool    `koanf:"persist"`
	Backend     string  `koanf:"backend"`
	MetricsAddr string  `koanf:"metrics-addr"`
	LogFormat   string  `koanf:"log-format"`
	LogLevel    string  `koanf:"log-level"`
	RolesFile   string  `koanf:"roles"`
	Subject     string  `koanf:"as"`
	WatchConfig bool    `koanf:"watch-config"`
	RateLimit   bool    `koanf:"rate-limit"`
	RateBurst   int     `koanf:"rate-burst"`
	RatePerSec  float64 `koanf:"rate-per-second"`
}

// Validate checks that the configuration is valid.
func (cfg *hostConfig) Validate() error {
	if cfg.Backend != backendTick && cfg.Backend != backendRegion {
		return fmt.Errorf("backend must be %q or %q, got %q", backendTick, backendRegion, cfg.Backend)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	if cfg.Subject == "" {
		return errors.New("as must not be empty")
	}
	if cfg.RateLimit && cfg.RateBurst < 1 {
		return fmt.Errorf("rate-burst must be at least 1, got %d", cfg.RateBurst)
	}
	if cfg.RateLimit && cfg.RatePerSec <= 0 {
		return fmt.Errorf("rate-per-second must be positive, got %v", cfg.RatePerSec)
	}
	return nil
}

// registerHostFlags adds the shared flags to fs.
func registerHostFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML config file; flags override its values (default: XDG_CONFIG_HOME/pluginkit/config.yaml if present)")
	fs.String("data-dir", "", "plugin data directory (empty = in-memory, no scripts)")
	fs.Bool("persist", false, "use XDG_DATA_HOME/pluginkit/<plugin> when --data-dir is empty")
	fs.String("backend", defaultBackend, "scheduler backend (tick or region)")
	fs.String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", defaultLogFormat, "log format (json or text)")
	fs.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("roles", "", "YAML roles file for permission checks")
	fs.String("as", defaultSubject, "subject to issue commands as")
	fs.Bool("watch-config", false, "reload config.yml when it changes")
	fs.Bool("rate-limit", false, "throttle commands per subject")
	fs.Int("rate-burst", defaultRateBurst, "rate limiter burst capacity")
	fs.Float64("rate-per-second", defaultRateRate, "rate limiter sustained rate")
}

// loadConfig merges the --config file and the flags in fs.
func loadConfig(fs *pflag.FlagSet) (*hostConfig, error) {
	k := koanf.New(".")

	path, err := fs.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("read config flag: %w", err)
	}
	if path == "" {
		path = xdg.DefaultConfigFile()
	}
	if path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config file: %w", statErr)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Unset flags only supply defaults for keys the file did not set.
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	cfg := &hostConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.resolveDataDir(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveDataDir points DataDir at the XDG data directory when --persist
// is set and no explicit directory was given.
func (cfg *hostConfig) resolveDataDir() error {
	if cfg.DataDir != "" || !cfg.Persist {
		return nil
	}
	dir := xdg.PluginDataDir(strings.ToLower(pluginName))
	if err := xdg.EnsureDir(dir); err != nil {
		return fmt.Errorf("prepare data directory: %w", err)
	}
	cfg.DataDir = dir
	return nil
}

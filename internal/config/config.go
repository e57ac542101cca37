// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Entry is a typed record erased to its key and default.
type Entry interface {
	Key() string
	DefaultValue() any
}

// Record declares a configuration key and its default value.
type Record[T any] struct {
	Path    string
	Default T
}

// Key returns the record's path.
func (r Record[T]) Key() string { return r.Path }

// DefaultValue returns the record's default.
func (r Record[T]) DefaultValue() any { return r.Default }

// Config is a plugin configuration built from typed records.
type Config struct {
	doc *Document
}

// Load opens the config file at path with the given records as defaults.
// Missing keys are written back to the file.
func Load(path string, entries ...Entry) (*Config, error) {
	defaults := make([]Default, 0, len(entries))
	for _, e := range entries {
		defaults = append(defaults, Default{Key: e.Key(), Value: e.DefaultValue()})
	}
	doc, err := Open(path, defaults...)
	if err != nil {
		return nil, err
	}
	return &Config{doc: doc}, nil
}

// Document returns the underlying document.
func (c *Config) Document() *Document { return c.doc }

// Reload re-reads the config file.
func (c *Config) Reload() error { return c.doc.Reload() }

// Save writes the config file.
func (c *Config) Save() error { return c.doc.Save() }

// Get returns the value stored for r, or r.Default when the key is absent
// or holds a value that cannot be read as T.
func Get[T any](c *Config, r Record[T]) T {
	var out any
	c.doc.read(func(k *koanf.Koanf) {
		if !k.Exists(r.Path) {
			return
		}
		switch any(r.Default).(type) {
		case string:
			out = k.String(r.Path)
		case int:
			out = k.Int(r.Path)
		case int64:
			out = k.Int64(r.Path)
		case float64:
			out = k.Float64(r.Path)
		case bool:
			out = k.Bool(r.Path)
		case []string:
			out = k.Strings(r.Path)
		case time.Duration:
			out = k.Duration(r.Path)
		default:
			out = k.Get(r.Path)
		}
	})
	if v, ok := out.(T); ok {
		return v
	}
	return r.Default
}

// Set stores v for r in memory. Call Save to persist.
func Set[T any](c *Config, r Record[T], v T) error {
	return c.doc.Set(r.Path, v)
}

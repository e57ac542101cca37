// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads flat key/value plugin configuration from YAML files.
//
// A Document seeds registered defaults, merges the file on top, and writes
// the merged result back so that operators always see every key. Keys use
// '.' as the path delimiter ("example.string" is nested YAML).
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

// Delimiter separates path segments in keys.
const Delimiter = "."

// Default is a key with its default value.
type Default struct {
	Key   string
	Value any
}

// Document is a YAML-backed key/value store. It is safe for concurrent use.
// An empty path keeps the document in memory only.
type Document struct {
	path     string
	defaults []Default

	mu      sync.RWMutex
	k       *koanf.Koanf
	watcher *file.File
}

// Open loads the document at path, seeding defaults first and writing the
// merged result back to disk.
func Open(path string, defaults ...Default) (*Document, error) {
	d := &Document{path: path, defaults: defaults}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	if err := d.Save(); err != nil {
		return nil, err
	}
	return d, nil
}

// Path returns the backing file path, or "" for in-memory documents.
func (d *Document) Path() string {
	return d.path
}

// Reload re-reads the file, replacing any in-memory changes.
func (d *Document) Reload() error {
	k, err := d.load()
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.k = k
	d.mu.Unlock()
	return nil
}

func (d *Document) load() (*koanf.Koanf, error) {
	k := koanf.New(Delimiter)
	for _, def := range d.defaults {
		if err := k.Set(def.Key, def.Value); err != nil {
			return nil, oops.In("config").Code("INVALID_DEFAULT").With("key", def.Key).Wrap(err)
		}
	}

	if d.path == "" {
		return k, nil
	}
	if _, err := os.Stat(d.path); errors.Is(err, fs.ErrNotExist) {
		return k, nil
	}
	if err := k.Load(file.Provider(d.path), yaml.Parser()); err != nil {
		return nil, oops.In("config").Code("LOAD_FAILED").With("path", d.path).Wrap(err)
	}
	return k, nil
}

// Save writes the current document to its file. No-op for in-memory documents.
func (d *Document) Save() error {
	if d.path == "" {
		return nil
	}

	d.mu.RLock()
	data, err := d.k.Marshal(yaml.Parser())
	d.mu.RUnlock()
	if err != nil {
		return oops.In("config").Code("SAVE_FAILED").With("path", d.path).Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(d.path), 0o750); err != nil {
		return oops.In("config").Code("SAVE_FAILED").With("path", d.path).Wrap(err)
	}
	if err := os.WriteFile(d.path, data, 0o600); err != nil {
		return oops.In("config").Code("SAVE_FAILED").With("path", d.path).Wrap(err)
	}
	return nil
}

// Set stores value at key in memory. Call Save to persist.
func (d *Document) Set(key string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.k.Set(key, value); err != nil {
		return oops.In("config").Code("SET_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

// Exists reports whether key holds a value.
func (d *Document) Exists(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.k.Exists(key)
}

// String returns the string at key, or "" if absent.
func (d *Document) String(key string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.k.String(key)
}

// read runs fn with the read lock held.
func (d *Document) read(fn func(k *koanf.Koanf)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.k)
}

// Watch reloads the document whenever its file changes and then calls
// onChange with the reload result. Returns an error for in-memory
// documents or if a watch is already active.
func (d *Document) Watch(onChange func(error)) error {
	if d.path == "" {
		return oops.In("config").Code("WATCH_FAILED").New("in-memory document cannot be watched")
	}

	d.mu.Lock()
	if d.watcher != nil {
		d.mu.Unlock()
		return oops.In("config").Code("WATCH_FAILED").With("path", d.path).New("already watching")
	}
	f := file.Provider(d.path)
	d.watcher = f
	d.mu.Unlock()

	err := f.Watch(func(_ any, err error) {
		if err != nil {
			onChange(oops.In("config").Code("WATCH_FAILED").With("path", d.path).Wrap(err))
			return
		}
		onChange(d.Reload())
	})
	if err != nil {
		d.mu.Lock()
		d.watcher = nil
		d.mu.Unlock()
		return oops.In("config").Code("WATCH_FAILED").With("path", d.path).Wrap(err)
	}
	return nil
}

// Close stops an active watch.
func (d *Document) Close() error {
	d.mu.Lock()
	w := d.watcher
	d.watcher = nil
	d.mu.Unlock()

	if w == nil {
		return nil
	}
	if err := w.Unwatch(); err != nil {
		return oops.In("config").Code("WATCH_FAILED").With("path", d.path).Wrap(err)
	}
	return nil
}

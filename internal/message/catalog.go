// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package message

import (
	"github.com/holomush/pluginkit/internal/config"
)

// Catalog is a Formatter backed by a messages file. Templates edited in
// the file override the record defaults; every registered record is
// written back so the file lists all messages.
type Catalog struct {
	doc *config.Document
}

// Open loads the messages file at path seeded with the given records.
// An empty path keeps the catalog in memory.
func Open(path string, records ...Record) (*Catalog, error) {
	defaults := make([]config.Default, 0, len(records))
	for _, r := range records {
		defaults = append(defaults, config.Default{Key: r.Path, Value: r.Default()})
	}
	doc, err := config.Open(path, defaults...)
	if err != nil {
		return nil, err
	}
	return &Catalog{doc: doc}, nil
}

// Reload re-reads the messages file.
func (c *Catalog) Reload() error {
	return c.doc.Reload()
}

// Save writes the catalog, including defaults missing from the file.
func (c *Catalog) Save() error {
	return c.doc.Save()
}

// Template returns the stored template for r, or its default when the
// path is absent from the file.
func (c *Catalog) Template(r Record) string {
	if !c.doc.Exists(r.Path) {
		return r.Default()
	}
	return c.doc.String(r.Path)
}

// Format implements Formatter.
func (c *Catalog) Format(r Record, args ...any) string {
	return Substitute(c.Template(r), r.Params, args...)
}

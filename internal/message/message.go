// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package message provides player-facing text templates with named
// placeholders, backed by an editable YAML file.
package message

import (
	"fmt"
	"strings"
)

// Marker is the positional placeholder used when authoring templates.
const Marker = "<%>"

// Record declares a message: its key in the messages file, the authored
// template, and the parameter names bound to each Marker in order.
type Record struct {
	Path     string
	Template string
	Params   []string
}

// New returns a Record. Convenience for package-level declarations.
func New(path, template string, params ...string) Record {
	return Record{Path: path, Template: template, Params: params}
}

// Default returns the template with each Marker replaced by its
// %param% placeholder. Markers without a parameter are left as-is.
func (r Record) Default() string {
	out := r.Template
	for _, p := range r.Params {
		if !strings.Contains(out, Marker) {
			break
		}
		out = strings.Replace(out, Marker, "%"+p+"%", 1)
	}
	return out
}

// Formatter renders records into player-facing text.
type Formatter interface {
	Format(r Record, args ...any) string
}

// Defaults formats records using their built-in templates.
type Defaults struct{}

// Format implements Formatter.
func (Defaults) Format(r Record, args ...any) string {
	return Substitute(r.Default(), r.Params, args...)
}

// Substitute replaces %param% placeholders in text with args, matched to
// params by position. Placeholders without an argument are left untouched.
func Substitute(text string, params []string, args ...any) string {
	n := min(len(params), len(args))
	if n == 0 {
		return text
	}
	pairs := make([]string, 0, 2*n)
	for i := range n {
		pairs = append(pairs, "%"+params[i]+"%", fmt.Sprint(args[i]))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

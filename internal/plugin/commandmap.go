// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/holomush/pluginkit/internal/command"
)

// CommandMap is the host's table of root command labels.
type CommandMap interface {
	// Register binds root under "prefix:name" and, if still free, under
	// its plain name. Reports whether the plain name was bound.
	Register(prefix string, root *command.Root) bool
}

// Commands is an in-process CommandMap that routes command lines.
// Labels are case-insensitive.
type Commands struct {
	mu     sync.RWMutex
	labels map[string]*command.Root
}

var _ CommandMap = (*Commands)(nil)

// NewCommands creates an empty command map.
func NewCommands() *Commands {
	return &Commands{labels: make(map[string]*command.Root)}
}

// Register implements CommandMap.
func (c *Commands) Register(prefix string, root *command.Root) bool {
	name := strings.ToLower(root.Name())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels[strings.ToLower(prefix)+":"+name] = root
	if _, taken := c.labels[name]; taken {
		return false
	}
	c.labels[name] = root
	return true
}

// Lookup returns the root bound to label.
func (c *Commands) Lookup(label string) (*command.Root, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.labels[strings.ToLower(label)]
	return r, ok
}

// Labels returns every bound label in ascending order.
func (c *Commands) Labels() []string {
	c.mu.RLock()
	labels := make([]string, 0, len(c.labels))
	for l := range c.labels {
		labels = append(labels, l)
	}
	c.mu.RUnlock()
	slices.Sort(labels)
	return labels
}

// Dispatch runs a full command line such as "/example hello Bob".
// Reports false when the line is blank or names no registered root.
func (c *Commands) Dispatch(ctx context.Context, sender command.Sender, line string) (command.Result, bool) {
	parsed, ok := command.ParseLine(line)
	if !ok {
		return command.Result{}, false
	}
	root, ok := c.Lookup(parsed.Label)
	if !ok {
		return command.Result{}, false
	}
	return root.Execute(ctx, sender, parsed.Label, parsed.Args), true
}

// Complete returns suggestions for a partial command line. While the
// label itself is being typed, matching labels are suggested.
func (c *Commands) Complete(ctx context.Context, sender command.Sender, line string) []string {
	parsed, ok := command.ParseLine(line)
	if !ok {
		return []string{}
	}
	if len(parsed.Args) == 0 {
		return command.FilterContains(c.Labels(), parsed.Label)
	}
	root, ok := c.Lookup(parsed.Label)
	if !ok {
		return []string{}
	}
	return root.Complete(ctx, sender, parsed.Label, parsed.Args)
}

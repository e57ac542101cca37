// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"log/slog"
)

// registrySource is one ordered batch of declarations.
type registrySource struct {
	name       string
	handlers   []Handler
	completers []Completer
}

// Registry maps tokens to execute and completion handlers.
// It is built once by newRegistry and never mutated afterwards, so it is
// safe for concurrent reads without locking.
type Registry struct {
	execute  map[string]Handler
	complete map[string]Completer
}

// newRegistry registers each source in order: its handlers, then its
// completers. A token declared again overwrites the earlier entry and a
// warning is logged. Any malformed declaration aborts the build.
func newRegistry(root string, logger *slog.Logger, sources ...registrySource) (*Registry, error) {
	r := &Registry{
		execute:  make(map[string]Handler),
		complete: make(map[string]Completer),
	}

	for _, src := range sources {
		for _, h := range src.handlers {
			if err := ValidateToken(h.Token); err != nil {
				return nil, ErrContractViolation(root, h.Token, err.Error())
			}
			if h.Execute == nil {
				return nil, ErrContractViolation(root, h.Token, "execute function is nil")
			}
			if h.Source == "" {
				h.Source = src.name
			}
			if existing, ok := r.execute[h.Token]; ok {
				logger.Warn("command conflict: overwriting existing handler",
					"root", root,
					"command", h.Token,
					"previous_source", existing.Source,
					"new_source", h.Source)
			}
			r.execute[h.Token] = h
		}

		for _, c := range src.completers {
			if err := ValidateToken(c.Token); err != nil {
				return nil, ErrContractViolation(root, c.Token, err.Error())
			}
			if c.Complete == nil {
				return nil, ErrContractViolation(root, c.Token, "complete function is nil")
			}
			if c.Source == "" {
				c.Source = src.name
			}
			if existing, ok := r.complete[c.Token]; ok {
				logger.Warn("command conflict: overwriting existing completer",
					"root", root,
					"command", c.Token,
					"previous_source", existing.Source,
					"new_source", c.Source)
			}
			r.complete[c.Token] = c
		}
	}

	return r, nil
}

// ResolveExecute returns the execute handler for token.
func (r *Registry) ResolveExecute(token string) (Handler, bool) {
	h, ok := r.execute[token]
	return h, ok
}

// ResolveComplete returns the completion handler for token.
func (r *Registry) ResolveComplete(token string) (Completer, bool) {
	c, ok := r.complete[token]
	return c, ok
}

// Tokens returns all execute tokens in no particular order.
// The returned slice is a copy and safe to modify.
func (r *Registry) Tokens() []string {
	tokens := make([]string, 0, len(r.execute))
	for t := range r.execute {
		tokens = append(tokens, t)
	}
	return tokens
}

// Len returns the number of execute tokens.
func (r *Registry) Len() int {
	return len(r.execute)
}

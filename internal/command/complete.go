// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/holomush/pluginkit/pkg/errutil"
)

// Complete returns suggestions for the argument being typed. It never
// fails; no suggestions is an empty, non-nil slice.
//
// For the first word, matching tokens are suggested. For later words, the
// token's completer is consulted if the sender may use it, and its
// candidates are filtered by the last word typed.
func (r *Root) Complete(ctx context.Context, sender Sender, label string, args []string) []string {
	if len(args) == 0 {
		return []string{}
	}

	if _, ok := r.registry.ResolveExecute(args[0]); !ok {
		if len(args) > 1 {
			return []string{}
		}
		tokens := r.registry.Tokens()
		slices.Sort(tokens)
		return FilterContains(tokens, args[0])
	}

	if len(args) < 2 {
		return []string{}
	}

	c, ok := r.registry.ResolveComplete(args[0])
	if !ok {
		return []string{}
	}
	if c.Permission != "" && !r.perms.HasPermission(ctx, sender.Subject(), c.Permission) {
		return []string{}
	}

	candidates, err := invokeCompleter(ctx, c, &Event{Sender: sender, Label: label, Args: args})
	switch {
	case errors.Is(err, ErrNoConstraint):
		RecordCompletion(c.Token, StatusNoConstraint)
		return []string{}
	case err != nil:
		RecordCompletion(c.Token, StatusError)
		errutil.LogError(ctx, r.logger, slog.LevelWarn, "command completion failed",
			ErrHandlerFailure(c.Token, err))
		return []string{}
	}

	RecordCompletion(c.Token, StatusSuccess)
	return FilterContains(candidates, args[len(args)-1])
}

func invokeCompleter(ctx context.Context, c Completer, event *Event) (candidates []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = recoveredError(c.Token, p)
		}
	}()
	return c.Complete(ctx, event)
}

// FilterContains returns the candidates containing filter, ignoring case.
// An empty filter keeps every candidate. The result is never nil.
func FilterContains(candidates []string, filter string) []string {
	out := make([]string, 0, len(candidates))
	if filter == "" {
		return append(out, candidates...)
	}
	lowered := strings.ToLower(filter)
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), lowered) {
			out = append(out, c)
		}
	}
	return out
}

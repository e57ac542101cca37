// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/pluginkit/pkg/errutil"
)

// HelpPageSize is the number of commands listed per help page.
const HelpPageSize = 5

// helpPageHint is the single completion candidate offered for "help".
const helpPageHint = "[number]"

func (r *Root) builtins() registrySource {
	return registrySource{
		name: SourceCore,
		handlers: []Handler{{
			Token:       "help",
			Usage:       "<page>",
			Description: "Shows all commands",
			Execute:     r.helpCommand,
		}},
		completers: []Completer{{
			Token: "help",
			Complete: func(context.Context, *Event) ([]string, error) {
				return []string{helpPageHint}, nil
			},
		}},
	}
}

// helpCommand renders the page named by Args[1], or the first page.
// A non-numeric page fails the invocation.
func (r *Root) helpCommand(_ context.Context, event *Event) (bool, error) {
	page := 1
	if len(event.Args) > 1 {
		n, err := strconv.Atoi(event.Args[1])
		if err != nil {
			return false, oops.In("help").With("page", event.Args[1]).Wrapf(err, "invalid page number")
		}
		page = n
	}

	text, err := r.HelpPage(page)
	if errutil.HasCode(err, CodeUnknownChapter) {
		event.Reply(r.messages.Format(MsgUnknownChapter))
		return true, nil
	}
	if err != nil {
		return false, err
	}
	event.Reply(text)
	return true, nil
}

// PageCount returns the number of help pages.
func (r *Root) PageCount() int {
	return (r.registry.Len() + HelpPageSize - 1) / HelpPageSize
}

// HelpPage renders 1-indexed help page. Tokens are listed in ascending
// order. Returns an UNKNOWN_CHAPTER error when page is out of range.
func (r *Root) HelpPage(page int) (string, error) {
	maxPage := r.PageCount()
	if page < 1 || page > maxPage {
		return "", ErrUnknownChapter(page, maxPage)
	}

	tokens := r.registry.Tokens()
	slices.Sort(tokens)
	start := (page - 1) * HelpPageSize
	end := min(start+HelpPageSize, len(tokens))

	var b strings.Builder
	b.WriteString(r.messages.Format(MsgHelpHeader, page, maxPage))
	for _, token := range tokens[start:end] {
		h, _ := r.registry.ResolveExecute(token)
		b.WriteString("\n")
		b.WriteString(r.messages.Format(MsgHelpEntry,
			h.Token, r.name, strings.ToLower(h.Token), h.Usage, h.Description))
	}
	if page < maxPage {
		b.WriteString("\n")
		b.WriteString(r.messages.Format(MsgHelpFooter, r.name, page+1))
	}
	return b.String(), nil
}

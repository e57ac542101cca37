// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"strings"
)

// ParsedLine is a command line split into its root label and arguments.
type ParsedLine struct {
	Label string   // root command name as typed
	Args  []string // remaining tokens; Args[0] is the subcommand token
	Raw   string   // original input
}

// Split breaks input into whitespace-separated tokens. When input ends in
// whitespace a trailing empty token is appended, marking that the user has
// started a new argument; completion relies on this.
func Split(input string) []string {
	tokens := strings.Fields(input)
	if len(tokens) > 0 && strings.TrimRight(input, " \t") != input {
		tokens = append(tokens, "")
	}
	return tokens
}

// ParseLine splits a full command line, e.g. "/example hello Bob", into
// its label and arguments. A leading slash on the label is dropped.
// Returns false for blank input.
func ParseLine(input string) (ParsedLine, bool) {
	tokens := Split(input)
	if len(tokens) == 0 {
		return ParsedLine{}, false
	}
	label := strings.TrimPrefix(tokens[0], "/")
	if label == "" {
		return ParsedLine{}, false
	}
	return ParsedLine{
		Label: label,
		Args:  tokens[1:],
		Raw:   input,
	}, true
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/pluginkit/internal/command"
)

var _ command.Sender = (*consoleSender)(nil)

// consoleSender writes replies to the terminal. Each console run is one
// session with its own ULID so log lines from concurrent runs can be told
// apart.
type consoleSender struct {
	subject string
	session ulid.ULID

	mu  sync.Mutex
	out io.Writer
}

func newConsoleSender(subject string, out io.Writer) *consoleSender {
	return &consoleSender{
		subject: subject,
		session: ulid.Make(),
		out:     out,
	}
}

func (s *consoleSender) Subject() string { return s.subject }

func (s *consoleSender) Name() string { return s.subject + "@" + s.session.String() }

func (s *consoleSender) SendMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.out, msg)
}

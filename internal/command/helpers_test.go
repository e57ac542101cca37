// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"sync"
)

// recordingSender captures every message sent to it.
type recordingSender struct {
	subject string

	mu       sync.Mutex
	messages []string
}

func newSender(subject string) *recordingSender {
	return &recordingSender{subject: subject}
}

func (s *recordingSender) Subject() string { return s.subject }
func (s *recordingSender) Name() string    { return s.subject }

func (s *recordingSender) SendMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

func (s *recordingSender) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// testCommand is a Command built from literal declarations.
type testCommand struct {
	name       string
	handlers   []Handler
	completers []Completer
}

func (c *testCommand) Name() string            { return c.name }
func (c *testCommand) Handlers() []Handler     { return c.handlers }
func (c *testCommand) Completers() []Completer { return c.completers }

// succeed is a handler that reports success without side effects.
func succeed(context.Context, *Event) (bool, error) { return true, nil }

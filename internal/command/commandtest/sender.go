// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package commandtest provides test helpers for command senders.
package commandtest

import (
	"sync"

	"github.com/holomush/pluginkit/internal/command"
)

var _ command.Sender = (*Sender)(nil)

// Sender records every message sent to it.
type Sender struct {
	subject string
	name    string

	mu       sync.Mutex
	messages []string
}

// NewSender creates a Sender whose display name equals its subject.
func NewSender(subject string) *Sender {
	return &Sender{subject: subject, name: subject}
}

// NewNamedSender creates a Sender with a distinct display name.
func NewNamedSender(subject, name string) *Sender {
	return &Sender{subject: subject, name: name}
}

// Subject implements command.Sender.
func (s *Sender) Subject() string { return s.subject }

// Name implements command.Sender.
func (s *Sender) Name() string { return s.name }

// SendMessage implements command.Sender.
func (s *Sender) SendMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of the messages received so far.
func (s *Sender) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// Last returns the most recent message, or "" when none was sent.
func (s *Sender) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

// Reset discards recorded messages.
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package accesstest provides test helpers for permission checks.
package accesstest

import (
	"context"
	"sync"

	"github.com/holomush/pluginkit/internal/access"
)

// AllowAll grants every permission.
type AllowAll struct{}

// HasPermission always returns true.
func (AllowAll) HasPermission(_ context.Context, _, _ string) bool { return true }

// DenyAll denies every permission.
type DenyAll struct{}

// HasPermission always returns false.
func (DenyAll) HasPermission(_ context.Context, _, _ string) bool { return false }

// Mock is a PermissionChecker with selective grants. It records every
// check so tests can assert which permissions were consulted.
type Mock struct {
	mu     sync.Mutex
	grants map[string]map[string]bool // subject → permission → granted
	checks []string
}

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{grants: make(map[string]map[string]bool)}
}

// Grant allows subject to hold permission.
func (m *Mock) Grant(subject, permission string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.grants[subject] == nil {
		m.grants[subject] = make(map[string]bool)
	}
	m.grants[subject][permission] = true
}

// HasPermission implements access.PermissionChecker.
func (m *Mock) HasPermission(_ context.Context, subject, permission string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, permission)
	return m.grants[subject][permission]
}

// Checks returns the permissions consulted so far, in order.
func (m *Mock) Checks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.checks...)
}

var (
	_ access.PermissionChecker = AllowAll{}
	_ access.PermissionChecker = DenyAll{}
	_ access.PermissionChecker = (*Mock)(nil)
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package access provides permission checks for command senders.
//
// Permissions are dotted strings such as "example.reload". Subjects are the
// stable identities returned by a sender, e.g. "player:01ABC" or "console".
// Evaluation policy belongs to the host; the command layer only asks
// whether a subject holds a permission.
package access

import "context"

// SubjectConsole identifies the host operator console. It holds every
// permission.
const SubjectConsole = "console"

// PermissionChecker reports whether a subject holds a permission.
type PermissionChecker interface {
	// HasPermission returns true if subject holds permission.
	// Returns false for unknown subjects (deny by default).
	HasPermission(ctx context.Context, subject, permission string) bool
}

// CheckerFunc adapts a function to PermissionChecker.
type CheckerFunc func(ctx context.Context, subject, permission string) bool

// HasPermission calls f.
func (f CheckerFunc) HasPermission(ctx context.Context, subject, permission string) bool {
	return f(ctx, subject, permission)
}

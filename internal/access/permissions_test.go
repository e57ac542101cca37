// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pluginkit/internal/access"
)

func TestDefaultRoles(t *testing.T) {
	roles := access.DefaultRoles()

	require.Contains(t, roles, "player")
	require.Contains(t, roles, "moderator")
	require.Contains(t, roles, "admin")

	assert.Contains(t, roles["player"], "example.hello")
	assert.NotContains(t, roles["player"], "example.reload")
	assert.Contains(t, roles["moderator"], "example.reload")
	assert.Contains(t, roles["admin"], "**")
}

func TestRoleComposition(t *testing.T) {
	roles := access.DefaultRoles()

	for _, perm := range roles["player"] {
		assert.Contains(t, roles["moderator"], perm, "moderator should include player permission: %s", perm)
	}
	for _, perm := range roles["moderator"] {
		assert.Contains(t, roles["admin"], perm, "admin should include moderator permission: %s", perm)
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

// Permission groups define reusable sets of permission patterns.
// Roles compose these groups rather than inheriting.

var playerPowers = []string{
	"example.test",
	"example.hello",
	"example.ping",
}

var moderatorPowers = []string{
	"example.reload",
	"pluginkit.ratelimit.bypass",
}

var adminPowers = []string{
	"**",
}

// DefaultRoles returns the default role definitions.
func DefaultRoles() map[string][]string {
	return map[string][]string{
		"player":    playerPowers,
		"moderator": compose(playerPowers, moderatorPowers),
		"admin":     compose(playerPowers, moderatorPowers, adminPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}

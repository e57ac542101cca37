// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package access

import (
	"context"
	"io"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// StaticPermissions implements PermissionChecker with static role definitions.
//
// Pattern matching uses gobwas/glob with '.' as the segment separator:
//   - "example.*" matches "example.reload" but not "example.admin.reset"
//   - "example.**" matches both
//   - "**" matches every permission
//
// Thread-safety: roles is immutable after construction. Only subjects is
// mutable and it is protected by mu.
type StaticPermissions struct {
	roles    map[string][]compiledPermission // role → compiled patterns (immutable)
	subjects map[string]string               // subject → role (protected by mu)
	mu       sync.RWMutex
}

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// NewStaticPermissions creates a checker with DefaultRoles.
//
// Panics if the default roles contain an invalid pattern (code bug).
func NewStaticPermissions() *StaticPermissions {
	sp, err := NewStaticPermissionsWithRoles(DefaultRoles())
	if err != nil {
		panic("invalid permission pattern in DefaultRoles: " + err.Error())
	}
	return sp
}

// NewStaticPermissionsWithRoles creates a checker with custom roles.
// Returns an error if any pattern fails to compile.
func NewStaticPermissionsWithRoles(roles map[string][]string) (*StaticPermissions, error) {
	compiledRoles := make(map[string][]compiledPermission, len(roles))
	for role, perms := range roles {
		compiled := make([]compiledPermission, 0, len(perms))
		for _, p := range perms {
			if p == "" {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					Errorf("empty permission pattern")
			}
			g, err := glob.Compile(p, '.')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					With("pattern", p).
					Wrap(err)
			}
			compiled = append(compiled, compiledPermission{pattern: p, glob: g})
		}
		compiledRoles[role] = compiled
	}

	return &StaticPermissions{
		roles:    compiledRoles,
		subjects: make(map[string]string),
	}, nil
}

// roleFile is the YAML shape accepted by LoadRoles.
type roleFile struct {
	Roles    map[string][]string `yaml:"roles"`
	Subjects map[string]string   `yaml:"subjects"`
}

// LoadRoles builds a checker from a YAML document:
//
//	roles:
//	  player: ["example.hello", "example.ping"]
//	subjects:
//	  player:01ABC: player
func LoadRoles(r io.Reader) (*StaticPermissions, error) {
	var doc roleFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, oops.In("access").Code("INVALID_ROLE_FILE").Wrap(err)
	}
	if doc.Roles == nil {
		doc.Roles = DefaultRoles()
	}

	sp, err := NewStaticPermissionsWithRoles(doc.Roles)
	if err != nil {
		return nil, err
	}
	for subject, role := range doc.Subjects {
		if err := sp.AssignRole(subject, role); err != nil {
			return nil, err
		}
	}
	return sp, nil
}

// HasPermission implements PermissionChecker. The console subject and
// system contexts are always allowed.
func (s *StaticPermissions) HasPermission(ctx context.Context, subject, permission string) bool {
	if subject == SubjectConsole || IsSystemContext(ctx) {
		return true
	}
	if subject == "" || permission == "" {
		return false
	}

	s.mu.RLock()
	role := s.subjects[subject]
	s.mu.RUnlock()

	for _, perm := range s.roles[role] {
		if perm.glob.Match(permission) {
			return true
		}
	}
	return false
}

// AssignRole sets the role for a subject.
// Returns an error if subject or role is empty, or the role is unknown.
func (s *StaticPermissions) AssignRole(subject, role string) error {
	if subject == "" {
		return oops.In("access").Code("INVALID_SUBJECT").New("subject cannot be empty")
	}
	if role == "" {
		return oops.In("access").Code("INVALID_ROLE").New("role cannot be empty")
	}
	if _, ok := s.roles[role]; !ok {
		return oops.In("access").Code("UNKNOWN_ROLE").With("role", role).New("unknown role")
	}

	s.mu.Lock()
	s.subjects[subject] = role
	s.mu.Unlock()
	return nil
}

// RevokeRole removes a subject's role assignment.
func (s *StaticPermissions) RevokeRole(subject string) error {
	if subject == "" {
		return oops.In("access").Code("INVALID_SUBJECT").New("subject cannot be empty")
	}

	s.mu.Lock()
	delete(s.subjects, subject)
	s.mu.Unlock()
	return nil
}

// Role returns the role assigned to a subject, or "" if none.
func (s *StaticPermissions) Role(subject string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subjects[subject]
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package org

import "github.com/samber/oops"

// Role is a member's role within an organization. The set is closed;
// anything else fails ParseRole with INVALID_ROLE.
type Role string

// The fixed role set, from most to least privileged.
const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// Roles lists all valid roles.
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleMember, RoleGuest}
}

// ParseRole validates a role name against the closed set.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleOwner, RoleAdmin, RoleMember, RoleGuest:
		return Role(name), nil
	}
	return "", oops.Code("INVALID_ROLE").
		With("role", name).
		Wrap(ErrInvalidRole)
}

// Valid reports whether the role is in the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// CanManageMembers reports whether the role may invite, remove, or re-role
// other members.
func (r Role) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package org

import "errors"

// Sentinel errors for expected business conditions. The registry wraps
// these with oops codes; repositories wrap ErrNotFound for missing rows.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRole is returned when a role is outside the closed role set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrAlreadyMember is returned when an account already belongs to the
	// organization.
	ErrAlreadyMember = errors.New("already a member")

	// ErrNotAMember is returned when no membership exists for the account.
	ErrNotAMember = errors.New("not a member")

	// ErrCannotRemoveOwner is returned when removing an owner membership.
	// Owners must be demoted (with another owner remaining) before removal.
	ErrCannotRemoveOwner = errors.New("cannot remove organization owner")

	// ErrLastOwner is returned when demoting the sole remaining owner,
	// which would leave the organization ownerless.
	ErrLastOwner = errors.New("organization must retain at least one owner")
)

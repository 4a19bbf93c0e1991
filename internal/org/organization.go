// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package org

import (
	"context"
	"time"

	"github.com/taskflow/taskflow/internal/auth"
)

// Organization name constraints and plan default.
const (
	MaxOrganizationNameLength = 100
	DefaultPlan               = "free"
)

// Organization represents a tenant. The slug is globally unique and
// immutable once assigned; deletion is a soft flag flip.
type Organization struct {
	ID          int64
	Name        string
	Slug        string
	Description *string
	Plan        string
	Settings    map[string]any
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership links one account to one organization with a role. At most one
// membership exists per (account, organization) pair, enforced by a database
// unique constraint.
type Membership struct {
	ID             int64
	UserID         int64
	OrganizationID int64
	Role           Role
	JoinedAt       time.Time
	InvitedBy      *int64
}

// UserOrganization pairs an organization with the user's role in it.
type UserOrganization struct {
	Organization Organization
	Role         Role
}

// Member pairs an account with its membership, as returned by member
// listings. InvitedByUsername is resolved from the inviter reference when
// present.
type Member struct {
	Account           auth.Account
	Membership        Membership
	InvitedByUsername *string
}

// OrganizationRepository manages organization persistence.
type OrganizationRepository interface {
	// CreateWithOwner atomically persists the organization and an owner
	// membership for ownerID. org.Slug carries the base slug on entry; the
	// repository resolves suffix collisions inside the same transaction and
	// fills in the final slug and generated IDs.
	CreateWithOwner(ctx context.Context, org *Organization, ownerID int64) (*Membership, error)

	// GetByID retrieves an organization by id. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id int64) (*Organization, error)

	// GetBySlug retrieves an active organization by slug.
	GetBySlug(ctx context.Context, slug string) (*Organization, error)

	// Update persists changes to an existing organization.
	Update(ctx context.Context, org *Organization) error

	// ListForUser returns all active organizations the user belongs to,
	// with the user's role in each.
	ListForUser(ctx context.Context, userID int64) ([]UserOrganization, error)
}

// MembershipRepository manages membership persistence.
//
// Create must surface the (user, organization) unique-constraint violation
// as ErrAlreadyMember.
type MembershipRepository interface {
	// Create stores a new membership and fills in its generated ID.
	Create(ctx context.Context, membership *Membership) error

	// Get retrieves the membership for (orgID, userID).
	// Returns ErrNotFound if none exists.
	Get(ctx context.Context, orgID, userID int64) (*Membership, error)

	// UpdateRole overwrites the membership's role.
	UpdateRole(ctx context.Context, orgID, userID int64, role Role) (*Membership, error)

	// Delete removes the membership for (orgID, userID).
	Delete(ctx context.Context, orgID, userID int64) error

	// ListByOrganization returns all members of an organization with their
	// accounts, ordered by join time, most recent first.
	ListByOrganization(ctx context.Context, orgID int64) ([]Member, error)

	// CountByOrganization returns the number of members in an organization.
	CountByOrganization(ctx context.Context, orgID int64) (int, error)

	// CountOwners returns the number of owner memberships in an organization.
	CountOwners(ctx context.Context, orgID int64) (int, error)
}

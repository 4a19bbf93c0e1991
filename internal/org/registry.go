// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package org

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/auth"
)

// Registry provides organization creation and role-gated membership
// mutation over the organization and membership repositories. Callers are
// assumed to be already-authenticated identities; role gating between the
// caller and the target organization happens at the transport layer via
// RoleOf.
type Registry struct {
	orgs     OrganizationRepository
	members  MembershipRepository
	accounts auth.AccountRepository
}

// NewRegistry creates a new Registry.
func NewRegistry(orgs OrganizationRepository, members MembershipRepository, accounts auth.AccountRepository) (*Registry, error) {
	if orgs == nil {
		return nil, oops.Errorf("organization repository is required")
	}
	if members == nil {
		return nil, oops.Errorf("membership repository is required")
	}
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	return &Registry{orgs: orgs, members: members, accounts: accounts}, nil
}

// CreateOrganization creates an organization and its owner membership
// atomically: both commit together or neither does. The slug is derived
// from the name, with integer suffixes resolving collisions.
func (r *Registry) CreateOrganization(ctx context.Context, name string, description *string, ownerID int64) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxOrganizationNameLength {
		return nil, oops.Code("ORG_INVALID_NAME").
			With("max", MaxOrganizationNameLength).
			Errorf("organization name must be 1-%d characters", MaxOrganizationNameLength)
	}

	base := Slugify(name)
	if base == "" {
		return nil, oops.Code("ORG_INVALID_NAME").
			With("name", name).
			Errorf("organization name yields an empty slug")
	}

	now := time.Now().UTC()
	organization := &Organization{
		Name:        name,
		Slug:        base,
		Description: description,
		Plan:        DefaultPlan,
		Settings:    map[string]any{},
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.orgs.CreateWithOwner(ctx, organization, ownerID); err != nil {
		return nil, oops.Code("ORG_CREATE_FAILED").
			With("name", name).
			With("owner_id", ownerID).
			Wrap(err)
	}
	return organization, nil
}

// GetBySlug retrieves an active organization by slug.
func (r *Registry) GetBySlug(ctx context.Context, slug string) (*Organization, error) {
	organization, err := r.orgs.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ORG_NOT_FOUND").With("slug", slug).Wrap(ErrNotFound)
		}
		return nil, oops.Code("ORG_GET_FAILED").With("slug", slug).Wrap(err)
	}
	return organization, nil
}

// OrganizationPatch carries an organization update; nil fields are left
// unchanged. The slug is immutable and deliberately absent.
type OrganizationPatch struct {
	Name        *string
	Description *string
	Settings    map[string]any
}

// UpdateOrganization applies the provided fields. Renaming does not re-slug.
func (r *Registry) UpdateOrganization(ctx context.Context, orgID int64, patch OrganizationPatch) (*Organization, error) {
	organization, err := r.getOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" || len(name) > MaxOrganizationNameLength {
			return nil, oops.Code("ORG_INVALID_NAME").
				With("max", MaxOrganizationNameLength).
				Errorf("organization name must be 1-%d characters", MaxOrganizationNameLength)
		}
		organization.Name = name
	}
	if patch.Description != nil {
		organization.Description = patch.Description
	}
	if patch.Settings != nil {
		organization.Settings = patch.Settings
	}
	organization.UpdatedAt = time.Now().UTC()

	if err := r.orgs.Update(ctx, organization); err != nil {
		return nil, oops.Code("ORG_UPDATE_FAILED").With("org_id", orgID).Wrap(err)
	}
	return organization, nil
}

// DeleteOrganization soft-deletes an organization by flipping its active
// flag. Rows are never removed.
func (r *Registry) DeleteOrganization(ctx context.Context, orgID int64) error {
	organization, err := r.getOrganization(ctx, orgID)
	if err != nil {
		return err
	}

	organization.Active = false
	organization.UpdatedAt = time.Now().UTC()

	if err := r.orgs.Update(ctx, organization); err != nil {
		return oops.Code("ORG_DELETE_FAILED").With("org_id", orgID).Wrap(err)
	}
	return nil
}

// AddMember invites the account with the given email into the organization.
// The role name is validated against the closed set. Any inviter role may
// grant "owner" and there is no cap on the number of owners.
func (r *Registry) AddMember(ctx context.Context, orgID int64, email, roleName string, inviterID int64) (*Membership, error) {
	role, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	if _, err := r.getOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	account, err := r.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(auth.ErrNotFound)
		}
		return nil, oops.Code("MEMBER_ADD_FAILED").
			With("operation", "get account by email").
			Wrap(err)
	}

	if _, err := r.members.Get(ctx, orgID, account.ID); err == nil {
		return nil, oops.Code("ALREADY_MEMBER").
			With("email", email).
			With("org_id", orgID).
			Wrap(ErrAlreadyMember)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("MEMBER_ADD_FAILED").
			With("operation", "check existing membership").
			Wrap(err)
	}

	membership := &Membership{
		UserID:         account.ID,
		OrganizationID: orgID,
		Role:           role,
		JoinedAt:       time.Now().UTC(),
		InvitedBy:      &inviterID,
	}

	// The (user, organization) unique constraint closes the race between
	// the check above and the insert.
	if err := r.members.Create(ctx, membership); err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			return nil, oops.Code("ALREADY_MEMBER").
				With("email", email).
				With("org_id", orgID).
				Wrap(ErrAlreadyMember)
		}
		return nil, oops.Code("MEMBER_ADD_FAILED").
			With("operation", "insert membership").
			Wrap(err)
	}
	return membership, nil
}

// RemoveMember removes an account's membership. Owner memberships cannot be
// removed, even by the owner themselves; demote first (while another owner
// remains), then remove.
func (r *Registry) RemoveMember(ctx context.Context, orgID, userID int64) error {
	membership, err := r.getMembership(ctx, orgID, userID)
	if err != nil {
		return err
	}

	if membership.Role == RoleOwner {
		return oops.Code("CANNOT_REMOVE_OWNER").
			With("org_id", orgID).
			With("user_id", userID).
			Wrap(ErrCannotRemoveOwner)
	}

	if err := r.members.Delete(ctx, orgID, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("NOT_A_MEMBER").With("org_id", orgID).With("user_id", userID).Wrap(ErrNotAMember)
		}
		return oops.Code("MEMBER_REMOVE_FAILED").
			With("org_id", orgID).
			With("user_id", userID).
			Wrap(err)
	}
	return nil
}

// UpdateMemberRole overwrites a member's role. Demoting the sole remaining
// owner fails with LAST_OWNER so the organization can never reach a
// zero-owner state through this API.
func (r *Registry) UpdateMemberRole(ctx context.Context, orgID, userID int64, roleName string) (*Membership, error) {
	role, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	membership, err := r.getMembership(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}

	if membership.Role == RoleOwner && role != RoleOwner {
		owners, err := r.members.CountOwners(ctx, orgID)
		if err != nil {
			return nil, oops.Code("MEMBER_UPDATE_FAILED").
				With("operation", "count owners").
				Wrap(err)
		}
		if owners <= 1 {
			return nil, oops.Code("LAST_OWNER").
				With("org_id", orgID).
				With("user_id", userID).
				Wrap(ErrLastOwner)
		}
	}

	updated, err := r.members.UpdateRole(ctx, orgID, userID, role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("NOT_A_MEMBER").With("org_id", orgID).With("user_id", userID).Wrap(ErrNotAMember)
		}
		return nil, oops.Code("MEMBER_UPDATE_FAILED").
			With("org_id", orgID).
			With("user_id", userID).
			Wrap(err)
	}
	return updated, nil
}

// ListForUser returns all active organizations the user belongs to with the
// user's role in each. Order is unspecified.
func (r *Registry) ListForUser(ctx context.Context, userID int64) ([]UserOrganization, error) {
	memberships, err := r.orgs.ListForUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("ORG_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return memberships, nil
}

// ListMembers returns all members of an organization with their accounts,
// ordered by join time, most recent first.
func (r *Registry) ListMembers(ctx context.Context, orgID int64) ([]Member, error) {
	if _, err := r.getOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	members, err := r.members.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, oops.Code("MEMBER_LIST_FAILED").With("org_id", orgID).Wrap(err)
	}
	return members, nil
}

// MemberCount returns the number of members in an organization.
func (r *Registry) MemberCount(ctx context.Context, orgID int64) (int, error) {
	count, err := r.members.CountByOrganization(ctx, orgID)
	if err != nil {
		return 0, oops.Code("MEMBER_COUNT_FAILED").With("org_id", orgID).Wrap(err)
	}
	return count, nil
}

// RoleOf returns the user's role in the organization. The second return is
// false when the user is not a member.
func (r *Registry) RoleOf(ctx context.Context, userID, orgID int64) (Role, bool, error) {
	membership, err := r.members.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, oops.Code("MEMBER_GET_FAILED").
			With("org_id", orgID).
			With("user_id", userID).
			Wrap(err)
	}
	return membership.Role, true, nil
}

func (r *Registry) getOrganization(ctx context.Context, orgID int64) (*Organization, error) {
	organization, err := r.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ORG_NOT_FOUND").With("org_id", orgID).Wrap(ErrNotFound)
		}
		return nil, oops.Code("ORG_GET_FAILED").With("org_id", orgID).Wrap(err)
	}
	return organization, nil
}

func (r *Registry) getMembership(ctx context.Context, orgID, userID int64) (*Membership, error) {
	membership, err := r.members.Get(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("NOT_A_MEMBER").With("org_id", orgID).With("user_id", userID).Wrap(ErrNotAMember)
		}
		return nil, oops.Code("MEMBER_GET_FAILED").
			With("org_id", orgID).
			With("user_id", userID).
			Wrap(err)
	}
	return membership, nil
}

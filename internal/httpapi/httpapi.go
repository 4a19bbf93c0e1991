// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

// Package httpapi exposes the REST surface: authentication, user profiles,
// and organization management under /api/v1.
package httpapi

import (
	"context"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/org"
)

// AuthService is the slice of auth.Gateway the API uses.
type AuthService interface {
	RegisterAndIssue(ctx context.Context, p auth.RegisterParams) (*auth.Account, string, error)
	LoginAndIssue(ctx context.Context, email, password string) (*auth.Account, string, error)
	Resolve(ctx context.Context, token string) (*auth.Account, error)
}

// AccountService is the slice of auth.Directory the API uses for profiles.
type AccountService interface {
	GetByID(ctx context.Context, id int64) (*auth.Account, error)
	Update(ctx context.Context, id int64, p auth.UpdateParams) (*auth.Account, error)
}

// OrgService is the slice of org.Registry the API uses.
type OrgService interface {
	CreateOrganization(ctx context.Context, name string, description *string, ownerID int64) (*org.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*org.Organization, error)
	UpdateOrganization(ctx context.Context, orgID int64, patch org.OrganizationPatch) (*org.Organization, error)
	DeleteOrganization(ctx context.Context, orgID int64) error
	AddMember(ctx context.Context, orgID int64, email, roleName string, inviterID int64) (*org.Membership, error)
	RemoveMember(ctx context.Context, orgID, userID int64) error
	UpdateMemberRole(ctx context.Context, orgID, userID int64, roleName string) (*org.Membership, error)
	ListForUser(ctx context.Context, userID int64) ([]org.UserOrganization, error)
	ListMembers(ctx context.Context, orgID int64) ([]org.Member, error)
	MemberCount(ctx context.Context, orgID int64) (int, error)
	RoleOf(ctx context.Context, userID, orgID int64) (org.Role, bool, error)
}

// Compile-time checks that the concrete services satisfy the API interfaces.
var (
	_ AuthService    = (*auth.Gateway)(nil)
	_ AccountService = (*auth.Directory)(nil)
	_ OrgService     = (*org.Registry)(nil)
)

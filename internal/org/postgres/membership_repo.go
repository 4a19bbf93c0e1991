// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/org"
)

// memberUniqueConstraint is the unique constraint on
// (user_id, organization_id), surfaced as ErrAlreadyMember.
const memberUniqueConstraint = "organization_members_user_org_key"

// MembershipRepository implements org.MembershipRepository using PostgreSQL.
type MembershipRepository struct {
	pool db
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(pool db) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// Create stores a new membership and fills in its generated id. A unique
// violation on (user, organization) surfaces as org.ErrAlreadyMember.
func (r *MembershipRepository) Create(ctx context.Context, membership *org.Membership) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO organization_members (
			user_id, organization_id, role, joined_at, invited_by_id
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		membership.UserID,
		membership.OrganizationID,
		string(membership.Role),
		membership.JoinedAt,
		membership.InvitedBy,
	).Scan(&membership.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == memberUniqueConstraint {
			return oops.Code("MEMBERSHIP_CONFLICT").
				With("user_id", membership.UserID).
				With("organization_id", membership.OrganizationID).
				Wrap(org.ErrAlreadyMember)
		}
		return oops.Code("MEMBERSHIP_CREATE_FAILED").
			With("operation", "insert membership").
			With("user_id", membership.UserID).
			With("organization_id", membership.OrganizationID).
			Wrap(err)
	}
	return nil
}

// Get retrieves the membership for (orgID, userID).
func (r *MembershipRepository) Get(ctx context.Context, orgID, userID int64) (*org.Membership, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, organization_id, role, joined_at, invited_by_id
		FROM organization_members
		WHERE organization_id = $1 AND user_id = $2
	`, orgID, userID)

	membership, err := scanMembership(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MEMBERSHIP_NOT_FOUND").
			With("organization_id", orgID).
			With("user_id", userID).
			Wrap(org.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MEMBERSHIP_GET_FAILED").
			With("operation", "get membership").
			With("organization_id", orgID).
			With("user_id", userID).
			Wrap(err)
	}
	return membership, nil
}

// UpdateRole overwrites the membership's role and returns the updated row.
func (r *MembershipRepository) UpdateRole(ctx context.Context, orgID, userID int64, role org.Role) (*org.Membership, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE organization_members SET role = $3
		WHERE organization_id = $1 AND user_id = $2
		RETURNING id, user_id, organization_id, role, joined_at, invited_by_id
	`, orgID, userID, string(role))

	membership, err := scanMembership(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MEMBERSHIP_NOT_FOUND").
			With("organization_id", orgID).
			With("user_id", userID).
			Wrap(org.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MEMBERSHIP_UPDATE_FAILED").
			With("operation", "update membership role").
			With("organization_id", orgID).
			With("user_id", userID).
			Wrap(err)
	}
	return membership, nil
}

// Delete removes the membership for (orgID, userID).
func (r *MembershipRepository) Delete(ctx context.Context, orgID, userID int64) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM organization_members
		WHERE organization_id = $1 AND user_id = $2
	`, orgID, userID)
	if err != nil {
		return oops.Code("MEMBERSHIP_DELETE_FAILED").
			With("operation", "delete membership").
			With("organization_id", orgID).
			With("user_id", userID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("MEMBERSHIP_NOT_FOUND").
			With("organization_id", orgID).
			With("user_id", userID).
			Wrap(org.ErrNotFound)
	}
	return nil
}

// ListByOrganization returns all members with their accounts, ordered by
// join time, most recent first. The inviter's username is resolved with a
// self-join when present.
func (r *MembershipRepository) ListByOrganization(ctx context.Context, orgID int64) ([]org.Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.full_name,
		       u.is_active, u.is_superuser, u.created_at, u.updated_at,
		       m.id, m.user_id, m.organization_id, m.role, m.joined_at,
		       m.invited_by_id, inviter.username
		FROM organization_members m
		JOIN users u ON u.id = m.user_id
		LEFT JOIN users inviter ON inviter.id = m.invited_by_id
		WHERE m.organization_id = $1
		ORDER BY m.joined_at DESC
	`, orgID)
	if err != nil {
		return nil, oops.Code("MEMBERSHIP_LIST_FAILED").
			With("operation", "list organization members").
			With("organization_id", orgID).
			Wrap(err)
	}
	defer rows.Close()

	var members []org.Member
	for rows.Next() {
		var (
			member org.Member
			role   string
		)
		if err := rows.Scan(
			&member.Account.ID,
			&member.Account.Username,
			&member.Account.Email,
			&member.Account.PasswordHash,
			&member.Account.FullName,
			&member.Account.Active,
			&member.Account.Superuser,
			&member.Account.CreatedAt,
			&member.Account.UpdatedAt,
			&member.Membership.ID,
			&member.Membership.UserID,
			&member.Membership.OrganizationID,
			&role,
			&member.Membership.JoinedAt,
			&member.Membership.InvitedBy,
			&member.InvitedByUsername,
		); err != nil {
			return nil, oops.Code("MEMBERSHIP_SCAN_FAILED").
				With("operation", "scan member row").
				Wrap(err)
		}
		member.Membership.Role = org.Role(role)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MEMBERSHIP_LIST_FAILED").
			With("operation", "iterate organization members").
			Wrap(err)
	}
	return members, nil
}

// CountByOrganization returns the number of members in an organization.
func (r *MembershipRepository) CountByOrganization(ctx context.Context, orgID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM organization_members WHERE organization_id = $1
	`, orgID).Scan(&count)
	if err != nil {
		return 0, oops.Code("MEMBERSHIP_COUNT_FAILED").
			With("operation", "count organization members").
			With("organization_id", orgID).
			Wrap(err)
	}
	return count, nil
}

// CountOwners returns the number of owner memberships in an organization.
func (r *MembershipRepository) CountOwners(ctx context.Context, orgID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM organization_members
		WHERE organization_id = $1 AND role = $2
	`, orgID, string(org.RoleOwner)).Scan(&count)
	if err != nil {
		return 0, oops.Code("MEMBERSHIP_COUNT_FAILED").
			With("operation", "count organization owners").
			With("organization_id", orgID).
			Wrap(err)
	}
	return count, nil
}

// scanMembership scans a single row into a Membership.
// Callers are responsible for handling pgx.ErrNoRows.
func scanMembership(row pgx.Row) (*org.Membership, error) {
	var (
		membership org.Membership
		role       string
	)
	err := row.Scan(
		&membership.ID,
		&membership.UserID,
		&membership.OrganizationID,
		&role,
		&membership.JoinedAt,
		&membership.InvitedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("MEMBERSHIP_SCAN_FAILED").
			With("operation", "scan membership").
			Wrap(err)
	}
	membership.Role = org.Role(role)
	return &membership, nil
}

// Compile-time interface check.
var _ org.MembershipRepository = (*MembershipRepository)(nil)

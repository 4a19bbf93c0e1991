// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

// Package postgres implements org repositories using PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/org"
)

// db is the subset of pgxpool.Pool the repositories use. Satisfied by
// pgxmock.PgxPoolIface in tests.
type db interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrganizationRepository implements org.OrganizationRepository using
// PostgreSQL.
type OrganizationRepository struct {
	pool db
}

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(pool db) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

// CreateWithOwner persists the organization and its owner membership in a
// single transaction. Slug suffix collisions are resolved inside the
// transaction; the slug unique constraint backs the resolution under
// concurrent creation.
func (r *OrganizationRepository) CreateWithOwner(ctx context.Context, organization *org.Organization, ownerID int64) (*org.Membership, error) {
	settingsJSON, err := json.Marshal(organization.Settings)
	if err != nil {
		return nil, oops.Code("ORG_CREATE_FAILED").
			With("operation", "marshal settings").
			Wrap(err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, oops.Code("ORG_CREATE_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // no-op after commit
	}()

	slug, err := org.ResolveSlug(organization.Slug, func(candidate string) (bool, error) {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM organizations WHERE slug = $1)`,
			candidate,
		).Scan(&exists); err != nil {
			return false, oops.Code("ORG_SLUG_CHECK_FAILED").
				With("slug", candidate).
				Wrap(err)
		}
		return exists, nil
	})
	if err != nil {
		return nil, err
	}
	organization.Slug = slug

	err = tx.QueryRow(ctx, `
		INSERT INTO organizations (
			name, slug, description, plan, settings,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		organization.Name,
		organization.Slug,
		organization.Description,
		organization.Plan,
		settingsJSON,
		organization.Active,
		organization.CreatedAt,
		organization.UpdatedAt,
	).Scan(&organization.ID)
	if err != nil {
		return nil, oops.Code("ORG_CREATE_FAILED").
			With("operation", "insert organization").
			With("slug", organization.Slug).
			Wrap(err)
	}

	membership := &org.Membership{
		UserID:         ownerID,
		OrganizationID: organization.ID,
		Role:           org.RoleOwner,
		JoinedAt:       organization.CreatedAt,
	}
	err = tx.QueryRow(ctx, `
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
		return nil, oops.Code("ORG_CREATE_FAILED").
			With("operation", "insert owner membership").
			With("owner_id", ownerID).
			Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, oops.Code("ORG_CREATE_FAILED").
			With("operation", "commit transaction").
			Wrap(err)
	}
	return membership, nil
}

// GetByID retrieves an organization by id.
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*org.Organization, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, plan, settings,
		       is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id)

	organization, err := scanOrganization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ORG_NOT_FOUND").
			With("id", id).
			Wrap(org.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ORG_GET_BY_ID_FAILED").
			With("operation", "get organization by id").
			With("id", id).
			Wrap(err)
	}
	return organization, nil
}

// GetBySlug retrieves an active organization by slug.
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*org.Organization, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, plan, settings,
		       is_active, created_at, updated_at
		FROM organizations
		WHERE slug = $1 AND is_active = TRUE
	`, slug)

	organization, err := scanOrganization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ORG_NOT_FOUND").
			With("slug", slug).
			Wrap(org.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ORG_GET_BY_SLUG_FAILED").
			With("operation", "get organization by slug").
			With("slug", slug).
			Wrap(err)
	}
	return organization, nil
}

// Update persists changes to an existing organization. The slug column is
// deliberately not written; slugs are immutable once assigned.
func (r *OrganizationRepository) Update(ctx context.Context, organization *org.Organization) error {
	settingsJSON, err := json.Marshal(organization.Settings)
	if err != nil {
		return oops.Code("ORG_UPDATE_FAILED").
			With("operation", "marshal settings").
			Wrap(err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE organizations SET
			name = $2,
			description = $3,
			plan = $4,
			settings = $5,
			is_active = $6,
			updated_at = $7
		WHERE id = $1
	`,
		organization.ID,
		organization.Name,
		organization.Description,
		organization.Plan,
		settingsJSON,
		organization.Active,
		organization.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ORG_UPDATE_FAILED").
			With("operation", "update organization").
			With("id", organization.ID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ORG_NOT_FOUND").
			With("id", organization.ID).
			Wrap(org.ErrNotFound)
	}
	return nil
}

// ListForUser returns all active organizations the user belongs to with the
// user's role in each.
func (r *OrganizationRepository) ListForUser(ctx context.Context, userID int64) ([]org.UserOrganization, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.name, o.slug, o.description, o.plan, o.settings,
		       o.is_active, o.created_at, o.updated_at, m.role
		FROM organizations o
		JOIN organization_members m ON o.id = m.organization_id
		WHERE m.user_id = $1 AND o.is_active = TRUE
	`, userID)
	if err != nil {
		return nil, oops.Code("ORG_LIST_FAILED").
			With("operation", "list organizations for user").
			With("user_id", userID).
			Wrap(err)
	}
	defer rows.Close()

	var results []org.UserOrganization
	for rows.Next() {
		var (
			organization org.Organization
			settingsJSON []byte
			role         string
		)
		if err := rows.Scan(
			&organization.ID,
			&organization.Name,
			&organization.Slug,
			&organization.Description,
			&organization.Plan,
			&settingsJSON,
			&organization.Active,
			&organization.CreatedAt,
			&organization.UpdatedAt,
			&role,
		); err != nil {
			return nil, oops.Code("ORG_SCAN_FAILED").
				With("operation", "scan user organization row").
				Wrap(err)
		}
		if err := unmarshalSettings(settingsJSON, &organization); err != nil {
			return nil, err
		}
		results = append(results, org.UserOrganization{
			Organization: organization,
			Role:         org.Role(role),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ORG_LIST_FAILED").
			With("operation", "iterate user organizations").
			Wrap(err)
	}
	return results, nil
}

// scanOrganization scans a single row into an Organization.
// Callers are responsible for handling pgx.ErrNoRows.
func scanOrganization(row pgx.Row) (*org.Organization, error) {
	var (
		organization org.Organization
		settingsJSON []byte
	)
	err := row.Scan(
		&organization.ID,
		&organization.Name,
		&organization.Slug,
		&organization.Description,
		&organization.Plan,
		&settingsJSON,
		&organization.Active,
		&organization.CreatedAt,
		&organization.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ORG_SCAN_FAILED").
			With("operation", "scan organization").
			Wrap(err)
	}
	if err := unmarshalSettings(settingsJSON, &organization); err != nil {
		return nil, err
	}
	return &organization, nil
}

func unmarshalSettings(settingsJSON []byte, organization *org.Organization) error {
	if len(settingsJSON) == 0 {
		return nil
	}
	if err := json.Unmarshal(settingsJSON, &organization.Settings); err != nil {
		return oops.Code("ORG_INVALID_SETTINGS").
			With("operation", "unmarshal settings").
			With("id", organization.ID).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ org.OrganizationRepository = (*OrganizationRepository)(nil)

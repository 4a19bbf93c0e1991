// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

// Package postgres implements auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/taskflow/taskflow/internal/auth"
)

// Unique index names from the schema, used to translate constraint
// violations into business errors.
const (
	emailUniqueConstraint    = "users_email_key"
	usernameUniqueConstraint = "users_username_key"
)

// db is the subset of pgxpool.Pool the repository uses. Satisfied by
// pgxmock.PgxPoolIface in tests.
type db interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool db
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool db) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account and fills in its generated id. Unique
// violations on email or username surface as auth.ErrDuplicateEmail or
// auth.ErrDuplicateUsername, so concurrent registrations cannot both pass
// the application-level checks and insert the same value.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (
			username, email, password_hash, full_name,
			is_active, is_superuser, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.FullName,
		account.Active,
		account.Superuser,
		account.CreatedAt,
		account.UpdatedAt,
	).Scan(&account.ID)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return oops.Code("ACCOUNT_CONFLICT").
				With("username", account.Username).
				Wrap(dup)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("username", account.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by id.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, full_name,
		       is_active, is_superuser, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id).
			Wrap(err)
	}
	return account, nil
}

// GetByEmail retrieves an account by email (case-insensitive).
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, full_name,
		       is_active, is_superuser, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			With("email", email).
			Wrap(err)
	}
	return account, nil
}

// GetByUsername retrieves an account by username (case-insensitive).
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, full_name,
		       is_active, is_superuser, created_at, updated_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`, username)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_USERNAME_FAILED").
			With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}
	return account, nil
}

// Update persists changes to an existing account. Unique violations map to
// the same duplicate errors as Create.
func (r *AccountRepository) Update(ctx context.Context, account *auth.Account) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET
			username = $2,
			email = $3,
			password_hash = $4,
			full_name = $5,
			is_active = $6,
			is_superuser = $7,
			updated_at = $8
		WHERE id = $1
	`,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.FullName,
		account.Active,
		account.Superuser,
		account.UpdatedAt,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return oops.Code("ACCOUNT_CONFLICT").
				With("id", account.ID).
				Wrap(dup)
		}
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "update account").
			With("id", account.ID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", account.ID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// duplicateError translates a unique-constraint violation into the matching
// business error, or returns nil when err is not a unique violation.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case emailUniqueConstraint:
		return auth.ErrDuplicateEmail
	case usernameUniqueConstraint:
		return auth.ErrDuplicateUsername
	}
	return nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var account auth.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.FullName,
		&account.Active,
		&account.Superuser,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}
	return &account, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)

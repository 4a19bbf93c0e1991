// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when no account matches a login email so that
// password verification still runs and response time stays flat. This is NOT
// a real credential - it's a fake digest that will never match any password.
//
//nolint:gosec // G101: intentionally fake digest for timing-attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Directory provides account registration, authentication, and profile
// updates over an AccountRepository.
type Directory struct {
	accounts AccountRepository
	hasher   PasswordHasher
}

// NewDirectory creates a new Directory.
func NewDirectory(accounts AccountRepository, hasher PasswordHasher) (*Directory, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Directory{accounts: accounts, hasher: hasher}, nil
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName *string
}

// Register creates a new active, non-privileged account. The email is
// checked before the username, so a request that collides on both reports
// the email conflict. The database unique constraints remain authoritative
// under concurrency; the repository maps constraint violations to the same
// errors.
func (d *Directory) Register(ctx context.Context, p RegisterParams) (*Account, error) {
	if err := ValidateUsername(p.Username); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(p.Email)
	if email == "" {
		return nil, oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(p.Password) < MinPasswordLength {
		return nil, oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}

	if _, err := d.accounts.GetByEmail(ctx, email); err == nil {
		return nil, oops.Code("DUPLICATE_EMAIL").With("email", email).Wrap(ErrDuplicateEmail)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check email uniqueness").
			Wrap(err)
	}

	if _, err := d.accounts.GetByUsername(ctx, p.Username); err == nil {
		return nil, oops.Code("DUPLICATE_USERNAME").With("username", p.Username).Wrap(ErrDuplicateUsername)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check username uniqueness").
			Wrap(err)
	}

	digest, err := d.hasher.Hash(p.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	now := time.Now().UTC()
	account := &Account{
		Username:     p.Username,
		Email:        email,
		PasswordHash: digest,
		FullName:     p.FullName,
		Active:       true,
		Superuser:    false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The repository surfaces unique-constraint violations as
	// ErrDuplicateEmail / ErrDuplicateUsername, closing the race between the
	// checks above and the insert.
	if err := d.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, oops.Code("DUPLICATE_EMAIL").With("email", email).Wrap(ErrDuplicateEmail)
		case errors.Is(err, ErrDuplicateUsername):
			return nil, oops.Code("DUPLICATE_USERNAME").With("username", p.Username).Wrap(ErrDuplicateUsername)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}

	return account, nil
}

// Authenticate verifies an email/password pair and returns the matching
// active account. All failure modes yield the same ErrInvalidCredentials;
// password verification runs against a dummy digest when the account is
// missing to keep response time constant.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, lookupErr := d.accounts.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	accountExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	valid := d.hasher.Verify(password, targetHash)
	if !accountExists || !valid || !account.Active {
		return nil, oops.Code("INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	return account, nil
}

// GetByID retrieves an account by id.
func (d *Directory) GetByID(ctx context.Context, id int64) (*Account, error) {
	return d.accounts.GetByID(ctx, id)
}

// GetByEmail retrieves an account by email.
func (d *Directory) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return d.accounts.GetByEmail(ctx, email)
}

// UpdateParams carries an account patch; nil fields are left unchanged.
type UpdateParams struct {
	Username *string
	Email    *string
	FullName *string
}

// Update applies the provided fields to an account. Changing the email or
// username re-checks uniqueness, excluding the account being updated.
func (d *Directory) Update(ctx context.Context, id int64, p UpdateParams) (*Account, error) {
	account, err := d.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}

	if p.Email != nil && *p.Email != account.Email {
		existing, err := d.accounts.GetByEmail(ctx, *p.Email)
		if err == nil && existing.ID != id {
			return nil, oops.Code("DUPLICATE_EMAIL").With("email", *p.Email).Wrap(ErrDuplicateEmail)
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UPDATE_FAILED").
				With("operation", "check email uniqueness").
				Wrap(err)
		}
		account.Email = *p.Email
	}

	if p.Username != nil && *p.Username != account.Username {
		if err := ValidateUsername(*p.Username); err != nil {
			return nil, err
		}
		existing, err := d.accounts.GetByUsername(ctx, *p.Username)
		if err == nil && existing.ID != id {
			return nil, oops.Code("DUPLICATE_USERNAME").With("username", *p.Username).Wrap(ErrDuplicateUsername)
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UPDATE_FAILED").
				With("operation", "check username uniqueness").
				Wrap(err)
		}
		account.Username = *p.Username
	}

	if p.FullName != nil {
		account.FullName = p.FullName
	}

	account.UpdatedAt = time.Now().UTC()

	if err := d.accounts.Update(ctx, account); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			return nil, oops.Code("DUPLICATE_EMAIL").Wrap(ErrDuplicateEmail)
		case errors.Is(err, ErrDuplicateUsername):
			return nil, oops.Code("DUPLICATE_USERNAME").Wrap(ErrDuplicateUsername)
		case errors.Is(err, ErrNotFound):
			return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "update account").
			Wrap(err)
	}

	return account, nil
}

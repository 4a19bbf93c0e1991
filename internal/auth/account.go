// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/samber/oops"
)

// Username and password validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
)

// usernameRegex matches usernames containing only letters, numbers, and
// underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Account represents a user identity record. Username and email are each
// globally unique, enforced by database constraints and re-checked on update.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     *string
	Active       bool
	Superuser    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateUsername validates a username against rules:
// MinUsernameLength to MaxUsernameLength characters, letters, numbers,
// and underscores only.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must contain only letters, numbers, and underscores")
	}
	return nil
}

// AccountRepository manages account persistence.
//
// Create and Update must surface unique-constraint violations as
// ErrDuplicateEmail or ErrDuplicateUsername so that concurrent
// check-then-insert races are closed by the storage layer, not by
// application logic alone.
type AccountRepository interface {
	// Create stores a new account and fills in its generated ID.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by id. Returns ErrNotFound if missing.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	// Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByUsername retrieves an account by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Update persists changes to an existing account.
	Update(ctx context.Context, account *Account) error
}

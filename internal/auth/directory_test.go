// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/auth/mocks"
	"github.com/taskflow/taskflow/pkg/errutil"
)

func TestNewDirectory_Validation(t *testing.T) {
	accounts := mocks.NewMockAccountRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)

	tests := []struct {
		name     string
		accounts auth.AccountRepository
		hasher   auth.PasswordHasher
		wantErr  string
	}{
		{name: "nil accounts", accounts: nil, hasher: hasher, wantErr: "accounts repository is required"},
		{name: "nil hasher", accounts: accounts, hasher: nil, wantErr: "password hasher is required"},
		{name: "valid", accounts: accounts, hasher: hasher},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := auth.NewDirectory(tt.accounts, tt.hasher)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, d)
		})
	}
}

func validRegisterParams() auth.RegisterParams {
	return auth.RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-password",
	}
}

func TestDirectory_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		accounts.On("GetByEmail", ctx, "alice@example.com").Return(nil, auth.ErrNotFound)
		accounts.On("GetByUsername", ctx, "alice").Return(nil, auth.ErrNotFound)
		hasher.On("Hash", "s3cret-password").Return("$argon2id$digest", nil)
		accounts.On("Create", ctx, mock.AnythingOfType("*auth.Account")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*auth.Account).ID = 1
			}).
			Return(nil)

		account, err := d.Register(ctx, validRegisterParams())
		require.NoError(t, err)
		assert.Equal(t, int64(1), account.ID)
		assert.Equal(t, "alice", account.Username)
		assert.Equal(t, "alice@example.com", account.Email)
		assert.Equal(t, "$argon2id$digest", account.PasswordHash)
		assert.True(t, account.Active)
		assert.False(t, account.Superuser)
	})

	t.Run("invalid username", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		p := validRegisterParams()
		p.Username = "ab"

		_, err = d.Register(ctx, p)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_USERNAME")
	})

	t.Run("empty email", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		p := validRegisterParams()
		p.Email = "   "

		_, err = d.Register(ctx, p)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
	})

	t.Run("short password", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		p := validRegisterParams()
		p.Password = "short"

		_, err = d.Register(ctx, p)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
	})

	t.Run("duplicate email", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		accounts.On("GetByEmail", ctx, "alice@example.com").
			Return(&auth.Account{ID: 9, Email: "alice@example.com"}, nil)

		_, err = d.Register(ctx, validRegisterParams())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DUPLICATE_EMAIL")
		assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
	})

	t.Run("email conflict reported before username conflict", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		// Both taken; only the email lookup should run.
		accounts.On("GetByEmail", ctx, "alice@example.com").
			Return(&auth.Account{ID: 9}, nil)

		_, err = d.Register(ctx, validRegisterParams())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DUPLICATE_EMAIL")
		accounts.AssertNotCalled(t, "GetByUsername", ctx, "alice")
	})

	t.Run("duplicate username", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		accounts.On("GetByEmail", ctx, "alice@example.com").Return(nil, auth.ErrNotFound)
		accounts.On("GetByUsername", ctx, "alice").
			Return(&auth.Account{ID: 9, Username: "alice"}, nil)

		_, err = d.Register(ctx, validRegisterParams())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DUPLICATE_USERNAME")
		assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
	})

	t.Run("insert race maps constraint violation", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		// Uniqueness checks pass, but a concurrent registration wins the
		// insert and the repository surfaces the constraint violation.
		accounts.On("GetByEmail", ctx, "alice@example.com").Return(nil, auth.ErrNotFound)
		accounts.On("GetByUsername", ctx, "alice").Return(nil, auth.ErrNotFound)
		hasher.On("Hash", "s3cret-password").Return("$argon2id$digest", nil)
		accounts.On("Create", ctx, mock.AnythingOfType("*auth.Account")).
			Return(auth.ErrDuplicateEmail)

		_, err = d.Register(ctx, validRegisterParams())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DUPLICATE_EMAIL")
	})
}

func TestDirectory_Authenticate(t *testing.T) {
	ctx := context.Background()

	active := &auth.Account{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$digest",
		Active:       true,
	}

	t.Run("success", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		accounts.On("GetByEmail", ctx, "alice@example.com").Return(active, nil)
		hasher.On("Verify", "s3cret-password", "$argon2id$digest").Return(true)

		account, err := d.Authenticate(ctx, "alice@example.com", "s3cret-password")
		require.NoError(t, err)
		assert.Equal(t, int64(1), account.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		accounts.On("GetByEmail", ctx, "alice@example.com").Return(active, nil)
		hasher.On("Verify", "wrong", "$argon2id$digest").Return(false)

		_, err = d.Authenticate(ctx, "alice@example.com", "wrong")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_CREDENTIALS")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email still verifies a digest", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		accounts.On("GetByEmail", ctx, "nobody@example.com").Return(nil, auth.ErrNotFound)
		// Verify must run against the dummy digest to keep timing flat.
		hasher.On("Verify", "whatever", mock.AnythingOfType("string")).Return(false)

		_, err = d.Authenticate(ctx, "nobody@example.com", "whatever")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_CREDENTIALS")
		hasher.AssertCalled(t, "Verify", "whatever", mock.AnythingOfType("string"))
	})

	t.Run("inactive account", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		inactive := *active
		inactive.Active = false

		accounts.On("GetByEmail", ctx, "alice@example.com").Return(&inactive, nil)
		hasher.On("Verify", "s3cret-password", "$argon2id$digest").Return(true)

		_, err = d.Authenticate(ctx, "alice@example.com", "s3cret-password")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "INVALID_CREDENTIALS")
	})
}

func TestDirectory_Update(t *testing.T) {
	ctx := context.Background()

	existing := func() *auth.Account {
		return &auth.Account{
			ID:       1,
			Username: "alice",
			Email:    "alice@example.com",
			Active:   true,
		}
	}

	t.Run("not found", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		accounts.On("GetByID", ctx, int64(404)).Return(nil, auth.ErrNotFound)

		_, err = d.Update(ctx, 404, auth.UpdateParams{})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
	})

	t.Run("change full name", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		fullName := "Alice Liddell"
		accounts.On("GetByID", ctx, int64(1)).Return(existing(), nil)
		accounts.On("Update", ctx, mock.MatchedBy(func(a *auth.Account) bool {
			return a.FullName != nil && *a.FullName == fullName
		})).Return(nil)

		account, err := d.Update(ctx, 1, auth.UpdateParams{FullName: &fullName})
		require.NoError(t, err)
		require.NotNil(t, account.FullName)
		assert.Equal(t, fullName, *account.FullName)
	})

	t.Run("email taken by another account", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		newEmail := "bob@example.com"
		accounts.On("GetByID", ctx, int64(1)).Return(existing(), nil)
		accounts.On("GetByEmail", ctx, newEmail).
			Return(&auth.Account{ID: 2, Email: newEmail}, nil)

		_, err = d.Update(ctx, 1, auth.UpdateParams{Email: &newEmail})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("username change to own username is a no-op check", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		same := "alice"
		accounts.On("GetByID", ctx, int64(1)).Return(existing(), nil)
		accounts.On("Update", ctx, mock.AnythingOfType("*auth.Account")).Return(nil)

		_, err = d.Update(ctx, 1, auth.UpdateParams{Username: &same})
		require.NoError(t, err)
		accounts.AssertNotCalled(t, "GetByUsername", ctx, same)
	})

	t.Run("username taken by another account", func(t *testing.T) {
		accounts := mocks.NewMockAccountRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		d, err := auth.NewDirectory(accounts, hasher)
		require.NoError(t, err)

		newName := "bob"
		accounts.On("GetByID", ctx, int64(1)).Return(existing(), nil)
		accounts.On("GetByUsername", ctx, newName).
			Return(&auth.Account{ID: 2, Username: newName}, nil)

		_, err = d.Update(ctx, 1, auth.UpdateParams{Username: &newName})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DUPLICATE_USERNAME")
	})
}

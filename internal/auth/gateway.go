// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Gateway orchestrates registration and login flows and resolves bearer
// tokens back to accounts. It is the single entry point external callers
// use to authenticate.
type Gateway struct {
	directory *Directory
	tokens    *TokenService
}

// NewGateway creates a new Gateway.
func NewGateway(directory *Directory, tokens *TokenService) (*Gateway, error) {
	if directory == nil {
		return nil, oops.Errorf("account directory is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token service is required")
	}
	return &Gateway{directory: directory, tokens: tokens}, nil
}

// RegisterAndIssue registers a new account and issues a bearer token for it.
// Duplicate errors from the directory propagate unchanged.
func (g *Gateway) RegisterAndIssue(ctx context.Context, p RegisterParams) (*Account, string, error) {
	account, err := g.directory.Register(ctx, p)
	if err != nil {
		return nil, "", err
	}

	token, err := g.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", oops.Code("TOKEN_ISSUE_FAILED").
			With("subject", account.ID).
			Wrap(err)
	}
	return account, token, nil
}

// LoginAndIssue authenticates an email/password pair and issues a bearer
// token. ErrInvalidCredentials propagates unchanged.
func (g *Gateway) LoginAndIssue(ctx context.Context, email, password string) (*Account, string, error) {
	account, err := g.directory.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := g.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", oops.Code("TOKEN_ISSUE_FAILED").
			With("subject", account.ID).
			Wrap(err)
	}
	return account, token, nil
}

// Resolve verifies a bearer token and re-derives the account it was issued
// for. Fails with ErrInvalidToken on verification failure, or USER_NOT_FOUND
// when the subject no longer maps to an account (deleted between issuance
// and use).
func (g *Gateway) Resolve(ctx context.Context, token string) (*Account, error) {
	subjectID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	account, err := g.directory.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").With("id", subjectID).Wrap(ErrNotFound)
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "get account by id").
			Wrap(err)
	}
	return account, nil
}

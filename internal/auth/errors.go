// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package auth

import "errors"

// Sentinel errors for expected business conditions. Services wrap these with
// oops codes so callers can match with errors.Is while logs keep structured
// context.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials is returned on any failed login. It deliberately
	// conflates "no such account" and "wrong password" to prevent account
	// enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned when a bearer token fails verification.
	ErrInvalidToken = errors.New("invalid token")
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

// Package auth provides account identity, credential hashing, bearer-token
// issuance, and the authentication gateway for TaskFlow.
//
// The package is organized around small collaborators:
//
//   - PasswordHasher: argon2id one-way credential hashing
//   - TokenService: signed, time-limited JWT bearer tokens
//   - Directory: account registration, authentication, and profile updates
//   - Gateway: the single entry point external callers authenticate through
//
// Persistence is abstracted behind AccountRepository; the PostgreSQL
// implementation lives in the postgres subpackage.
package auth

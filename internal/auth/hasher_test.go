// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/pkg/errutil"
)

func TestArgon2idHasher_HashAndVerify(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	digest, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$"), "digest should be PHC formatted: %s", digest)

	assert.True(t, hasher.Verify("correct horse battery staple", digest))
	assert.False(t, hasher.Verify("wrong password", digest))
}

func TestArgon2idHasher_EmptyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	_, err := hasher.Hash("")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
}

func TestArgon2idHasher_SaltsDiffer(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "each hash must use a fresh salt")
	assert.True(t, hasher.Verify("same password", first))
	assert.True(t, hasher.Verify("same password", second))
}

func TestArgon2idHasher_VerifyMalformedDigest(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty digest", digest: ""},
		{name: "not a PHC string", digest: "plainly-not-a-hash"},
		{name: "wrong algorithm", digest: "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{name: "truncated", digest: "$argon2id$v=19$m=65536"},
		{name: "bad base64 salt", digest: "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{name: "bad parameters", digest: "$argon2id$v=19$m=abc,t=1,p=4$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Never panics, never errors - just false.
			assert.False(t, hasher.Verify("any password", tt.digest))
		})
	}
}

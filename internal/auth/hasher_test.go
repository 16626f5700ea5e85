// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/pkg/errutil"
)

func newBcrypt(t *testing.T) *auth.BcryptHasher {
	t.Helper()
	h, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewPasswordHasher(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		cost      int
		wantType  any
		wantCode  string
	}{
		{name: "default is bcrypt", algorithm: "", wantType: &auth.BcryptHasher{}},
		{name: "bcrypt", algorithm: auth.AlgorithmBcrypt, cost: 12, wantType: &auth.BcryptHasher{}},
		{name: "argon2id", algorithm: auth.AlgorithmArgon2id, wantType: &auth.Argon2idHasher{}},
		{name: "unknown algorithm", algorithm: "md5", wantCode: "AUTH_UNKNOWN_ALGORITHM"},
		{name: "cost too low", algorithm: auth.AlgorithmBcrypt, cost: 3, wantCode: "AUTH_INVALID_COST"},
		{name: "cost too high", algorithm: auth.AlgorithmBcrypt, cost: 32, wantCode: "AUTH_INVALID_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := auth.NewPasswordHasher(tt.algorithm, tt.cost)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Nil(t, h)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, h)
		})
	}
}

func TestNewPasswordHasher_Argon2idIgnoresBcryptCost(t *testing.T) {
	h, err := auth.NewPasswordHasher(auth.AlgorithmArgon2id, bcrypt.MaxCost)
	require.NoError(t, err)

	hash, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"), hash)
	assert.False(t, h.NeedsUpgrade(hash))
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h, err := auth.NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, h.Cost())
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := newBcrypt(t)

	t.Run("produces bcrypt hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
		assert.True(t, hasher.Verify("samepassword", hash1))
		assert.True(t, hasher.Verify("samepassword", hash2))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})

	t.Run("rejects password over 72 bytes", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("a", 73))
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_PASSWORD_TOO_LONG")
	})

	t.Run("accepts password of exactly 72 bytes", func(t *testing.T) {
		pw := strings.Repeat("b", 72)
		hash, err := hasher.Hash(pw)
		require.NoError(t, err)
		assert.True(t, hasher.Verify(pw, hash))
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := newBcrypt(t)
	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", "secret", hash, true},
		{"wrong password", "secreT", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", "secret", "", false},
		{"garbage hash", "secret", "not-a-valid-hash", false},
		{"truncated hash", "secret", hash[:20], false},
		{"argon2id hash", "secret", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Verify(tt.password, tt.hash))
		})
	}
}

func TestBcryptHasher_NeedsUpgrade(t *testing.T) {
	hasher := newBcrypt(t)
	current, err := hasher.Hash("secret")
	require.NoError(t, err)

	stronger, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost+1)
	require.NoError(t, err)

	assert.False(t, hasher.NeedsUpgrade(current))
	assert.True(t, hasher.NeedsUpgrade(string(stronger)), "different cost")
	assert.True(t, hasher.NeedsUpgrade("$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"), "different algorithm")
	assert.True(t, hasher.NeedsUpgrade("garbage"))
}

func TestBcryptHasher_DecoyHash(t *testing.T) {
	hasher := newBcrypt(t)
	decoy := hasher.DecoyHash()

	cost, err := bcrypt.Cost([]byte(decoy))
	require.NoError(t, err, "decoy must be well-formed")
	assert.Equal(t, bcrypt.MinCost, cost)

	for _, pw := range []string{"", "password", "secret", strings.Repeat("x", 72)} {
		assert.False(t, hasher.Verify(pw, decoy))
	}
}

func TestArgon2idHasher(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("produces PHC formatted hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))
		assert.True(t, hasher.Verify("password123", hash))
		assert.False(t, hasher.Verify("password124", hash))
		assert.False(t, hasher.NeedsUpgrade(hash))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_PASSWORD")
	})

	t.Run("verifies legacy bcrypt hash and flags it for upgrade", func(t *testing.T) {
		legacy, err := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.MinCost)
		require.NoError(t, err)

		assert.True(t, hasher.Verify("oldpassword", string(legacy)))
		assert.False(t, hasher.Verify("newpassword", string(legacy)))
		assert.True(t, hasher.NeedsUpgrade(string(legacy)))
	})

	t.Run("flags weaker parameters for upgrade", func(t *testing.T) {
		assert.True(t, hasher.NeedsUpgrade("$argon2id$v=19$m=32768,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"))
	})

	t.Run("malformed hashes never verify", func(t *testing.T) {
		for _, hash := range []string{
			"",
			"not-a-valid-hash",
			"$argon2i$v=19$m=65536,t=1,p=4$AAAA$AAAA",
			"$argon2id$v=18$m=65536,t=1,p=4$AAAA$AAAA",
			"$argon2id$v=19$m=65536,t=0,p=4$AAAA$AAAA",
			"$argon2id$v=19$m=65536,t=1,p=0$AAAA$AAAA",
			"$argon2id$v=19$m=65536,t=1,p=4$!!!!$AAAA",
			"$argon2id$v=19$m=65536,t=1,p=4$AAAA$",
		} {
			assert.False(t, hasher.Verify("password", hash), hash)
		}
	})

	t.Run("decoy never verifies", func(t *testing.T) {
		assert.False(t, hasher.Verify("password", hasher.DecoyHash()))
	})
}

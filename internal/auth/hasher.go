// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// bcrypt ignores everything past 72 bytes; such inputs are refused instead.
const bcryptMaxPasswordBytes = 72

// argon2DecoyHash is a well-formed argon2id hash that no password matches.
const argon2DecoyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// ErrPasswordTooLong is returned when a password exceeds what bcrypt can hash.
var ErrPasswordTooLong = oops.Code("AUTH_PASSWORD_TOO_LONG").
	With("max_bytes", bcryptMaxPasswordBytes).
	Errorf("password exceeds %d bytes", bcryptMaxPasswordBytes)

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted hash of the password. Hashing the same password
	// twice yields different outputs.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. Malformed hashes never match.
	Verify(password, hash string) bool

	// NeedsUpgrade returns true if hash was produced with another algorithm or
	// other parameters than this hasher uses.
	NeedsUpgrade(hash string) bool

	// DecoyHash returns a well-formed hash at this hasher's cost that no
	// password matches. Verifying against it costs the same as a real check.
	DecoyHash() string
}

// NewPasswordHasher returns the hasher for algorithm. cost applies to bcrypt
// only; zero selects bcrypt.DefaultCost.
func NewPasswordHasher(algorithm string, cost int) (PasswordHasher, error) {
	switch algorithm {
	case "", AlgorithmBcrypt:
		return NewBcryptHasher(cost)
	case AlgorithmArgon2id:
		return NewArgon2idHasher(), nil
	default:
		return nil, oops.Code("AUTH_UNKNOWN_ALGORITHM").
			With("algorithm", algorithm).
			Errorf("unknown hash algorithm %q", algorithm)
	}
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_COST").
			With("cost", cost).
			Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost returns the work factor new hashes are produced with.
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash produces a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > bcryptMaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(hash), nil
}

// Verify checks if the password matches the bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return verifyBcrypt(password, hash)
}

// NeedsUpgrade returns true if hash is not bcrypt or uses a different cost.
func (h *BcryptHasher) NeedsUpgrade(hash string) bool {
	if !isBcryptHash(hash) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost != h.cost
}

// DecoyHash returns a bcrypt hash with a zero salt and digest.
func (h *BcryptHasher) DecoyHash() string {
	return fmt.Sprintf("$2a$%02d$%s", h.cost, strings.Repeat(".", 53))
}

// Argon2idHasher implements PasswordHasher using argon2id. It also verifies
// bcrypt hashes so stored credentials can be migrated on login.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify checks if the password matches an argon2id or bcrypt hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) bool {
	if isBcryptHash(encodedHash) {
		return verifyBcrypt(password, encodedHash)
	}

	params, ok := parseArgon2id(encodedHash)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(password), params.salt, params.time, params.memory, params.threads, uint32(len(params.key)))
	return subtle.ConstantTimeCompare(computed, params.key) == 1
}

// NeedsUpgrade returns true if the hash is not argon2id with the current parameters.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	params, ok := parseArgon2id(hash)
	if !ok {
		return true
	}
	return params.time != argon2Time || params.memory != argon2Memory || params.threads != argon2Threads
}

// DecoyHash returns an argon2id hash with a zero salt and digest.
func (h *Argon2idHasher) DecoyHash() string {
	return argon2DecoyHash
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2id(encoded string) (argon2Params, bool) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, false
	}

	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return p, false
	}
	// argon2 panics on zero time or threads
	if threads == 0 || threads > 255 || p.time == 0 || p.memory == 0 || p.memory > 1<<21 {
		return p, false
	}
	p.threads = uint8(threads)

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, false
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, false
	}
	if len(p.key) == 0 || len(p.key) > 1<<10 {
		return p, false
	}
	return p, true
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

func verifyBcrypt(password, hash string) bool {
	if password == "" || !isBcryptHash(hash) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

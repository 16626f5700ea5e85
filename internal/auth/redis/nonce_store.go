// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

// Package redis provides a Redis-backed reset nonce store. Nonces expire
// through key TTLs, so no cleanup job is needed.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/redeemr/redeemr/internal/auth"
)

// KeyPrefix namespaces nonce keys.
const KeyPrefix = "redeemr:reset:"

// consumeScript deletes the key only if it still belongs to the principal.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NonceStore implements auth.NonceStore with one key per nonce hash.
type NonceStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ auth.NonceStore = (*NonceStore)(nil)

// NewNonceStore creates a NonceStore on client.
func NewNonceStore(client redis.UniversalClient) *NonceStore {
	return &NonceStore{client: client, now: time.Now}
}

func key(nonceHash string) string {
	return KeyPrefix + nonceHash
}

// Save stores the nonce hash until expiresAt. Already-expired nonces are not stored.
func (s *NonceStore) Save(ctx context.Context, principalID, nonceHash string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, key(nonceHash), principalID, ttl).Err(); err != nil {
		return oops.Code("RESET_NONCE_SAVE_FAILED").
			With("operation", "set reset nonce").
			With("principal_id", principalID).
			Wrap(err)
	}
	return nil
}

// Exists reports whether the nonce is outstanding for principalID.
func (s *NonceStore) Exists(ctx context.Context, principalID, nonceHash string) (bool, error) {
	owner, err := s.client.Get(ctx, key(nonceHash)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("RESET_NONCE_QUERY_FAILED").
			With("operation", "get reset nonce").
			With("principal_id", principalID).
			Wrap(err)
	}
	return owner == principalID, nil
}

// Consume removes the nonce if it is outstanding for principalID.
func (s *NonceStore) Consume(ctx context.Context, principalID, nonceHash string) (bool, error) {
	deleted, err := consumeScript.Run(ctx, s.client, []string{key(nonceHash)}, principalID).Int64()
	if err != nil {
		return false, oops.Code("RESET_NONCE_CONSUME_FAILED").
			With("operation", "delete reset nonce").
			With("principal_id", principalID).
			Wrap(err)
	}
	return deleted == 1, nil
}

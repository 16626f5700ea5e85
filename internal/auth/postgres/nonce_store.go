// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/internal/store"
)

// NonceStore implements auth.NonceStore over the password_resets table.
type NonceStore struct {
	pool store.Pool
	now  func() time.Time
}

var _ auth.NonceStore = (*NonceStore)(nil)

// NewNonceStore creates a new NonceStore.
func NewNonceStore(pool store.Pool) *NonceStore {
	return &NonceStore{pool: pool, now: time.Now}
}

// Save records a nonce hash until expiresAt.
func (s *NonceStore) Save(ctx context.Context, principalID, nonceHash string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO password_resets (token_hash, principal_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, nonceHash, principalID, expiresAt, s.now())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("RESET_NONCE_DUPLICATE").
			With("principal_id", principalID).
			Wrap(err)
	}
	if err != nil {
		return oops.Code("RESET_NONCE_SAVE_FAILED").
			With("operation", "insert password_reset").
			With("principal_id", principalID).
			Wrap(err)
	}
	return nil
}

// Exists reports whether an unexpired nonce is recorded for principalID.
func (s *NonceStore) Exists(ctx context.Context, principalID, nonceHash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM password_resets
			WHERE token_hash = $1 AND principal_id = $2 AND expires_at > $3
		)
	`, nonceHash, principalID, s.now()).Scan(&exists)
	if err != nil {
		return false, oops.Code("RESET_NONCE_QUERY_FAILED").
			With("operation", "select password_reset").
			With("principal_id", principalID).
			Wrap(err)
	}
	return exists, nil
}

// Consume deletes the nonce. The single DELETE makes concurrent consumers race
// on one row, so at most one sees a deleted row.
func (s *NonceStore) Consume(ctx context.Context, principalID, nonceHash string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM password_resets
		WHERE token_hash = $1 AND principal_id = $2 AND expires_at > $3
	`, nonceHash, principalID, s.now())
	if err != nil {
		return false, oops.Code("RESET_NONCE_CONSUME_FAILED").
			With("operation", "delete password_reset").
			With("principal_id", principalID).
			Wrap(err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteExpired removes nonces past their expiry and returns how many were removed.
func (s *NonceStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM password_resets WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, oops.Code("RESET_NONCE_CLEANUP_FAILED").
			With("operation", "delete expired password_resets").
			Wrap(err)
	}
	return tag.RowsAffected(), nil
}

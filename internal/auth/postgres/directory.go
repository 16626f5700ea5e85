// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

// Package postgres provides PostgreSQL implementations of the auth storage interfaces.
//
// Directory reads the users table owned by the account CRUD layer:
//
//	users (email text unique, name text, hashed_password text, is_active bool,
//	       is_superuser bool, created_at timestamptz, last_login timestamptz)
//
// NonceStore uses its own table:
//
//	password_resets (token_hash text primary key, principal_id text not null,
//	                 expires_at timestamptz not null, created_at timestamptz not null)
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/internal/store"
)

// Directory implements auth.Directory over the users table.
type Directory struct {
	pool store.Pool
}

var _ auth.Directory = (*Directory)(nil)

// NewDirectory creates a new Directory.
func NewDirectory(pool store.Pool) *Directory {
	return &Directory{pool: pool}
}

// FindPrincipalByID retrieves a principal by email.
func (d *Directory) FindPrincipalByID(ctx context.Context, id string) (*auth.Principal, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT email, COALESCE(name, ''), NOT COALESCE(is_active, TRUE), COALESCE(is_superuser, FALSE),
		       COALESCE(created_at, to_timestamp(0)), last_login
		FROM users
		WHERE email = $1
	`, id)

	var p auth.Principal
	err := row.Scan(&p.ID, &p.Name, &p.Disabled, &p.Superuser, &p.CreatedAt, &p.LastAuthenticatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("principal_id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_QUERY_FAILED").
			With("operation", "select user").
			With("principal_id", id).
			Wrap(err)
	}
	return &p, nil
}

// StoredHash returns the encoded credential of p.
func (d *Directory) StoredHash(ctx context.Context, p *auth.Principal) (string, error) {
	var hash string
	err := d.pool.QueryRow(ctx, `
		SELECT COALESCE(hashed_password, '')
		FROM users
		WHERE email = $1
	`, p.ID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && hash == "") {
		return "", oops.Code("CREDENTIAL_NOT_FOUND").
			With("principal_id", p.ID).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return "", oops.Code("CREDENTIAL_QUERY_FAILED").
			With("operation", "select hashed_password").
			With("principal_id", p.ID).
			Wrap(err)
	}
	return hash, nil
}

// PersistNewHash replaces the stored credential of p.
func (d *Directory) PersistNewHash(ctx context.Context, p *auth.Principal, hash string) error {
	tag, err := d.pool.Exec(ctx, `UPDATE users SET hashed_password = $2 WHERE email = $1`, p.ID, hash)
	if err != nil {
		return oops.Code("CREDENTIAL_UPDATE_FAILED").
			With("operation", "update hashed_password").
			With("principal_id", p.ID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("principal_id", p.ID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// PersistLastAuthenticatedAt records a successful login.
func (d *Directory) PersistLastAuthenticatedAt(ctx context.Context, p *auth.Principal, at time.Time) error {
	tag, err := d.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE email = $1`, p.ID, at)
	if err != nil {
		return oops.Code("LAST_LOGIN_UPDATE_FAILED").
			With("operation", "update last_login").
			With("principal_id", p.ID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("principal_id", p.ID).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

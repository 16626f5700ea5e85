// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"context"
	"time"
)

// Principal is an authenticated identity owned by the directory. A disabled
// principal can neither log in nor use previously issued sessions.
type Principal struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name,omitempty"`
	Disabled            bool       `json:"disabled"`
	Superuser           bool       `json:"superuser"`
	CreatedAt           time.Time  `json:"created_at"`
	LastAuthenticatedAt *time.Time `json:"last_authenticated_at,omitempty"`
}

// PrincipalFinder looks principals up by identifier.
type PrincipalFinder interface {
	// FindPrincipalByID returns ErrNotFound when no principal has the identifier.
	FindPrincipalByID(ctx context.Context, id string) (*Principal, error)
}

// CredentialLookup gives the Authenticator access to stored credentials.
type CredentialLookup interface {
	PrincipalFinder

	// StoredHash returns the encoded credential of p.
	StoredHash(ctx context.Context, p *Principal) (string, error)
}

// Directory is the user store the Service works against.
type Directory interface {
	CredentialLookup

	// PersistNewHash replaces the stored credential of p.
	PersistNewHash(ctx context.Context, p *Principal, hash string) error

	// PersistLastAuthenticatedAt records a successful login.
	PersistLastAuthenticatedAt(ctx context.Context, p *Principal, at time.Time) error
}

// CredentialUpdater is implemented by lookups that can persist re-hashed credentials.
type CredentialUpdater interface {
	PersistNewHash(ctx context.Context, p *Principal, hash string) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Authenticator checks identifier/password pairs.
type Authenticator struct {
	lookup  CredentialLookup
	hasher  PasswordHasher
	logger  *slog.Logger
	metrics *Metrics
}

// NewAuthenticator creates an Authenticator. When lookup also implements
// CredentialUpdater, outdated hashes are replaced on successful login.
func NewAuthenticator(lookup CredentialLookup, hasher PasswordHasher, opts ...Option) (*Authenticator, error) {
	if lookup == nil {
		return nil, oops.Errorf("credential lookup is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	o := buildOptions(opts)
	return &Authenticator{
		lookup:  lookup,
		hasher:  hasher,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// Authenticate returns the principal identified by id when password matches
// its stored credential. Unknown identifiers, wrong passwords and disabled
// principals all yield ErrInvalidCredentials. A hash is verified on every
// path so response time does not reveal whether id exists.
func (a *Authenticator) Authenticate(ctx context.Context, id, password string) (*Principal, error) {
	principal, err := a.lookup.FindPrincipalByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.metrics.login("error")
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "find principal").
				Wrap(err)
		}
		a.hasher.Verify(password, a.hasher.DecoyHash())
		return nil, a.reject(ctx, id, "unknown_principal")
	}

	hash, err := a.lookup.StoredHash(ctx, principal)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.metrics.login("error")
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "load credential").
				Wrap(err)
		}
		hash = a.hasher.DecoyHash()
	}

	if !a.hasher.Verify(password, hash) {
		return nil, a.reject(ctx, id, "bad_password")
	}

	// Checked after verification to keep timing uniform.
	if principal.Disabled {
		return nil, a.reject(ctx, id, "disabled")
	}

	a.upgradeHash(ctx, principal, password, hash)

	a.metrics.login("ok")
	return principal, nil
}

func (a *Authenticator) reject(ctx context.Context, id, reason string) error {
	a.logger.DebugContext(ctx, "authentication rejected", "principal_id", id, "reason", reason)
	a.metrics.login("rejected")
	return invalidCredentials()
}

// upgradeHash re-hashes the password when the stored hash is outdated.
// Login succeeds regardless of the outcome.
func (a *Authenticator) upgradeHash(ctx context.Context, principal *Principal, password, hash string) {
	updater, ok := a.lookup.(CredentialUpdater)
	if !ok || !a.hasher.NeedsUpgrade(hash) {
		return
	}

	newHash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.WarnContext(ctx, "credential upgrade skipped",
			"principal_id", principal.ID,
			"error", err)
		return
	}
	if err := updater.PersistNewHash(ctx, principal, newHash); err != nil {
		a.logger.WarnContext(ctx, "credential upgrade failed",
			"principal_id", principal.ID,
			"error", err)
		return
	}
	a.logger.InfoContext(ctx, "credential upgraded", "principal_id", principal.ID)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Resolver maps bearer session tokens to principals.
type Resolver struct {
	codec   *Codec
	finder  PrincipalFinder
	logger  *slog.Logger
	metrics *Metrics
}

// NewResolver creates a Resolver.
func NewResolver(codec *Codec, finder PrincipalFinder, opts ...Option) (*Resolver, error) {
	if codec == nil {
		return nil, oops.Errorf("codec is required")
	}
	if finder == nil {
		return nil, oops.Errorf("principal finder is required")
	}
	o := buildOptions(opts)
	return &Resolver{
		codec:   codec,
		finder:  finder,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// Resolve returns the principal named by bearer. Disabled principals are
// rejected even when their token is still valid. Every rejection is
// ErrUnauthenticated; the reason is only logged. Directory failures are
// returned as AUTH_RESOLVE_FAILED.
func (r *Resolver) Resolve(ctx context.Context, bearer string) (*Principal, error) {
	if bearer == "" {
		return nil, r.reject(ctx, "empty_token")
	}

	claims, err := r.codec.Decode(bearer)
	if err != nil {
		kind := tokenErrorKind(err)
		r.metrics.tokenFailure(kind)
		return nil, r.reject(ctx, kind.String())
	}
	if claims.Subject == "" {
		return nil, r.reject(ctx, "missing_subject")
	}
	// Reset tokens are signed with the same key but never authorize requests.
	if claims.Type != "" {
		return nil, r.reject(ctx, "wrong_type")
	}

	principal, err := r.finder.FindPrincipalByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, r.reject(ctx, "unknown_principal")
		}
		r.metrics.resolution("error")
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "find principal").
			With("principal_id", claims.Subject).
			Wrap(err)
	}

	if principal.Disabled {
		return nil, r.reject(ctx, "disabled")
	}

	r.metrics.resolution("ok")
	return principal, nil
}

func (r *Resolver) reject(ctx context.Context, reason string) error {
	r.logger.DebugContext(ctx, "bearer token rejected", "reason", reason)
	r.metrics.resolution("rejected")
	return unauthenticated()
}

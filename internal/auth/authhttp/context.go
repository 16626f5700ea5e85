// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package authhttp

import (
	"context"

	"github.com/redeemr/redeemr/internal/auth"
)

type principalKey struct{}

// WithPrincipal stores an authenticated principal in the context.
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored by RequirePrincipal.
func PrincipalFrom(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*auth.Principal)
	return p, ok && p != nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

// Package authhttp adapts the principal resolver to HTTP handlers.
package authhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/pkg/errutil"
)

// UnauthenticatedDetail is the body detail sent with every 401.
const UnauthenticatedDetail = "Could not validate credentials"

// PrincipalResolver resolves bearer tokens. *auth.Resolver and *auth.Service satisfy it.
type PrincipalResolver interface {
	Resolve(ctx context.Context, bearer string) (*auth.Principal, error)
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively; anything else yields "".
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequirePrincipal rejects requests whose bearer token does not resolve to a
// principal. On success the principal is available through PrincipalFrom on
// the request context.
//
// Rejections reply 401 with a WWW-Authenticate challenge. Directory failures
// reply 500 so clients do not discard valid tokens.
func RequirePrincipal(resolver PrincipalResolver, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := BearerToken(c.GetHeader("Authorization"))

		principal, err := resolver.Resolve(ctx, token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				c.Header("WWW-Authenticate", "Bearer")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": UnauthenticatedDetail})
				return
			}
			errutil.LogError(ctx, logger, "principal resolution failed", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(ctx, principal))
		c.Next()
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "bearer"

// AccessToken is a signed session token handed to a client.
type AccessToken struct {
	Token     string    `json:"access_token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionIssuer mints session tokens for authenticated principals.
type SessionIssuer struct {
	codec            *Codec
	ttl              time.Duration
	rememberMeFactor int
}

// NewSessionIssuer creates a SessionIssuer. Non-positive ttl and factor select
// DefaultSessionTTL and DefaultRememberMeFactor.
func NewSessionIssuer(codec *Codec, ttl time.Duration, rememberMeFactor int) (*SessionIssuer, error) {
	if codec == nil {
		return nil, oops.Errorf("codec is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if rememberMeFactor <= 0 {
		rememberMeFactor = DefaultRememberMeFactor
	}
	return &SessionIssuer{codec: codec, ttl: ttl, rememberMeFactor: rememberMeFactor}, nil
}

// TTL returns the default session lifetime.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue mints a session token for principalID that expires after ttl.
// A non-positive ttl selects the default lifetime.
func (s *SessionIssuer) Issue(principalID string, ttl time.Duration) (*AccessToken, error) {
	if principalID == "" {
		return nil, oops.Code("SESSION_INVALID_PRINCIPAL").Errorf("principal ID cannot be empty")
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	now := s.codec.Now()
	expiresAt := expiryAfter(now, ttl)
	token, err := s.codec.Encode(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	})
	if err != nil {
		return nil, oops.Code("SESSION_ISSUE_FAILED").With("principal_id", principalID).Wrap(err)
	}

	return &AccessToken{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresAt: expiresAt,
	}, nil
}

// IssueFor mints a session with the default lifetime, extended by the
// remember-me factor when rememberMe is set.
func (s *SessionIssuer) IssueFor(principalID string, rememberMe bool) (*AccessToken, error) {
	ttl := s.ttl
	if rememberMe {
		ttl *= time.Duration(s.rememberMeFactor)
	}
	return s.Issue(principalID, ttl)
}

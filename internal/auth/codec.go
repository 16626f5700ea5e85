// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenTypePasswordReset marks claims that authorize a password reset.
// Session claims carry no type.
const TokenTypePasswordReset = "password_reset"

// Claims is the payload carried by every token this package signs.
type Claims struct {
	// Type distinguishes reset tokens from session tokens.
	Type string `json:"type,omitempty"`
	// ResetToken is the random nonce embedded in reset tokens.
	ResetToken string `json:"reset_token,omitempty"`
	jwt.RegisteredClaims
}

// TokenErrorKind classifies why a token was rejected.
type TokenErrorKind int

// Token rejection kinds.
const (
	TokenMalformed TokenErrorKind = iota
	TokenExpired
	TokenBadSignature
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenExpired:
		return "expired"
	case TokenBadSignature:
		return "bad_signature"
	default:
		return "malformed"
	}
}

// TokenError is returned by Codec.Decode.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "token " + e.Kind.String()
	}
	return "token " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithClock sets the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// Codec signs and verifies HS256 tokens with a single symmetric key.
type Codec struct {
	key    []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec creates a Codec. The key is copied.
func NewCodec(key []byte, opts ...CodecOption) (*Codec, error) {
	if len(key) == 0 {
		return nil, oops.Code("TOKEN_KEY_REQUIRED").Errorf("signing key is required")
	}

	c := &Codec{
		key: append([]byte(nil), key...),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	return c, nil
}

// Now returns the codec's current time.
func (c *Codec) Now() time.Time {
	return c.now()
}

// expiryAfter returns now+ttl rounded up to the precision of the exp claim,
// so a token never expires before the lifetime it was issued with.
func expiryAfter(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if whole := exp.Truncate(jwt.TimePrecision); whole.Before(exp) {
		return whole.Add(jwt.TimePrecision)
	}
	return exp
}

// Encode signs claims. Claims without an expiry are refused.
func (c *Codec) Encode(claims Claims) (string, error) {
	if claims.ExpiresAt == nil {
		return "", oops.Code("TOKEN_MISSING_EXPIRY").Errorf("claims must carry an expiry")
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Decode verifies token and returns its claims. Failures are *TokenError.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, &TokenError{Kind: classifyTokenError(err), Err: err}
	}
	return claims, nil
}

func classifyTokenError(err error) TokenErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return TokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired
	default:
		return TokenMalformed
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// ResetNonceLength is the number of characters in a reset nonce.
const ResetNonceLength = 64

const resetAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NonceStore records outstanding reset nonces. Nonces are passed in hashed form.
type NonceStore interface {
	// Save records a nonce until expiresAt.
	Save(ctx context.Context, principalID, nonceHash string, expiresAt time.Time) error

	// Exists reports whether an unexpired nonce is recorded for principalID.
	Exists(ctx context.Context, principalID, nonceHash string) (bool, error)

	// Consume deletes the nonce and reports whether it was present and unexpired.
	// Concurrent calls for the same nonce succeed at most once.
	Consume(ctx context.Context, principalID, nonceHash string) (bool, error)
}

// ResetManager issues and checks password reset tokens.
type ResetManager struct {
	codec   *Codec
	ttl     time.Duration
	nonces  NonceStore
	random  io.Reader
	logger  *slog.Logger
	metrics *Metrics
}

// NewResetManager creates a ResetManager. A non-positive ttl selects DefaultResetTTL.
func NewResetManager(codec *Codec, ttl time.Duration, opts ...Option) (*ResetManager, error) {
	if codec == nil {
		return nil, oops.Errorf("codec is required")
	}
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	o := buildOptions(opts)
	return &ResetManager{
		codec:   codec,
		ttl:     ttl,
		nonces:  o.nonces,
		random:  rand.Reader,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// SingleUse reports whether tokens are tracked in a NonceStore.
func (m *ResetManager) SingleUse() bool {
	return m.nonces != nil
}

// CreateResetToken issues a reset token for principalID.
func (m *ResetManager) CreateResetToken(ctx context.Context, principalID string) (string, error) {
	if principalID == "" {
		return "", oops.Code("RESET_INVALID_PRINCIPAL").Errorf("principal ID cannot be empty")
	}

	nonce, err := randomAlphanumeric(m.random, ResetNonceLength)
	if err != nil {
		m.metrics.resetToken("create", "error")
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	now := m.codec.Now()
	expiresAt := expiryAfter(now, m.ttl)
	token, err := m.codec.Encode(Claims{
		Type:       TokenTypePasswordReset,
		ResetToken: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		m.metrics.resetToken("create", "error")
		return "", oops.Code("RESET_TOKEN_SIGN_FAILED").With("principal_id", principalID).Wrap(err)
	}

	if m.nonces != nil {
		if err := m.nonces.Save(ctx, principalID, hashNonce(nonce), expiresAt); err != nil {
			m.metrics.resetToken("create", "error")
			return "", oops.Code("RESET_TOKEN_STORE_FAILED").With("principal_id", principalID).Wrap(err)
		}
	}

	m.metrics.resetToken("create", "ok")
	return token, nil
}

// VerifyResetToken reports whether token is a valid, unexpired reset token
// for expectedPrincipalID. It never returns an error; every failure is false.
func (m *ResetManager) VerifyResetToken(ctx context.Context, token, expectedPrincipalID string) bool {
	claims, ok := m.checkClaims(ctx, token, expectedPrincipalID)
	if !ok {
		m.metrics.resetToken("verify", "rejected")
		return false
	}

	if m.nonces != nil {
		present, err := m.nonces.Exists(ctx, expectedPrincipalID, hashNonce(claims.ResetToken))
		if err != nil {
			m.logger.WarnContext(ctx, "reset nonce lookup failed",
				"principal_id", expectedPrincipalID,
				"error", err)
			m.metrics.resetToken("verify", "error")
			return false
		}
		if !present {
			m.logger.DebugContext(ctx, "reset nonce not outstanding", "principal_id", expectedPrincipalID)
			m.metrics.resetToken("verify", "rejected")
			return false
		}
	}

	m.metrics.resetToken("verify", "ok")
	return true
}

// ConsumeResetToken verifies token like VerifyResetToken and, when a
// NonceStore is configured, spends it so later calls return false.
func (m *ResetManager) ConsumeResetToken(ctx context.Context, token, expectedPrincipalID string) bool {
	claims, ok := m.checkClaims(ctx, token, expectedPrincipalID)
	if !ok {
		m.metrics.resetToken("consume", "rejected")
		return false
	}

	if m.nonces != nil {
		consumed, err := m.nonces.Consume(ctx, expectedPrincipalID, hashNonce(claims.ResetToken))
		if err != nil {
			m.logger.WarnContext(ctx, "reset nonce consume failed",
				"principal_id", expectedPrincipalID,
				"error", err)
			m.metrics.resetToken("consume", "error")
			return false
		}
		if !consumed {
			m.metrics.resetToken("consume", "rejected")
			return false
		}
	}

	m.metrics.resetToken("consume", "ok")
	return true
}

func (m *ResetManager) checkClaims(ctx context.Context, token, expectedPrincipalID string) (*Claims, bool) {
	if token == "" || expectedPrincipalID == "" {
		return nil, false
	}

	claims, err := m.codec.Decode(token)
	if err != nil {
		m.logger.DebugContext(ctx, "reset token rejected", "reason", tokenErrorKind(err).String())
		m.metrics.tokenFailure(tokenErrorKind(err))
		return nil, false
	}
	if claims.Type != TokenTypePasswordReset {
		m.logger.DebugContext(ctx, "reset token rejected", "reason", "wrong_type")
		return nil, false
	}
	if subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(expectedPrincipalID)) != 1 {
		m.logger.DebugContext(ctx, "reset token rejected", "reason", "subject_mismatch")
		return nil, false
	}
	if claims.ResetToken == "" {
		m.logger.DebugContext(ctx, "reset token rejected", "reason", "missing_nonce")
		return nil, false
	}
	return claims, true
}

// randomAlphanumeric draws n characters uniformly from resetAlphabet.
// Bytes at or above the largest multiple of the alphabet size are discarded
// so every character is equally likely.
func randomAlphanumeric(r io.Reader, n int) (string, error) {
	const limit = 256 - 256%len(resetAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, resetAlphabet[int(b)%len(resetAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// hashNonce computes the SHA256 hash of a reset nonce.
func hashNonce(nonce string) string {
	h := sha256.Sum256([]byte(nonce))
	return hex.EncodeToString(h[:])
}

func tokenErrorKind(err error) TokenErrorKind {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	return TokenMalformed
}

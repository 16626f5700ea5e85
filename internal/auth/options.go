// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"log/slog"
	"time"
)

// Defaults for Params fields left zero.
const (
	DefaultSessionTTL       = 30 * time.Minute
	DefaultRememberMeFactor = 7
	DefaultResetTTL         = 24 * time.Hour
)

// Params holds the values the subsystem is configured with.
type Params struct {
	SigningKey       []byte
	HashAlgorithm    string
	// BcryptCost is the bcrypt work factor. argon2id uses fixed parameters
	// and ignores it.
	BcryptCost       int
	SessionTTL       time.Duration
	RememberMeFactor int
	ResetTTL         time.Duration

	// Clock is the time source for token issuance and validation; nil means time.Now.
	Clock func() time.Time
}

func (p Params) withDefaults() Params {
	if p.HashAlgorithm == "" {
		p.HashAlgorithm = AlgorithmBcrypt
	}
	if p.SessionTTL <= 0 {
		p.SessionTTL = DefaultSessionTTL
	}
	if p.RememberMeFactor <= 0 {
		p.RememberMeFactor = DefaultRememberMeFactor
	}
	if p.ResetTTL <= 0 {
		p.ResetTTL = DefaultResetTTL
	}
	return p
}

// Option configures components in this package. Options a component has no
// use for are ignored.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
	nonces  NonceStore
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithNonceStore makes reset tokens single-use by recording their nonces.
func WithNonceStore(store NonceStore) Option {
	return func(o *options) {
		o.nonces = store
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

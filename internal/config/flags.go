// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package config

import (
	"net/url"

	"github.com/spf13/pflag"
)

// RegisterFlags adds one flag per configuration key. Flags only override
// other sources when set explicitly.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("signing-key", "", "HS256 signing key (prefer REDEEMR_SIGNING_KEY)")
	fs.String("hash-algorithm", "", "password hash algorithm (bcrypt or argon2id)")
	fs.Int("bcrypt-cost", 0, "bcrypt cost factor")
	fs.Duration("session-ttl", 0, "session token lifetime")
	fs.Int("remember-me-factor", 0, "session lifetime multiplier for remember-me logins")
	fs.Duration("reset-ttl", 0, "password reset token lifetime")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.String("redis-url", "", "Redis connection URL")
	fs.String("reset-store", "", "reset nonce store (none, postgres or redis)")
	fs.String("log-format", "", "log format (json or text)")
	fs.String("log-level", "", "log level (debug, info, warn or error)")
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[REDACTED]"
	}
	return u.Redacted()
}

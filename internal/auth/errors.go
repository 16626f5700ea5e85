// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned when an identifier/password pair is rejected.
// Unknown identifiers, wrong passwords and inactive principals are
// indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated is returned when a bearer token does not resolve to a principal.
var ErrUnauthenticated = errors.New("could not validate credentials")

// ErrInvalidResetToken is returned when a reset token is rejected.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
}

func unauthenticated() error {
	return oops.Code("AUTH_UNAUTHENTICATED").Wrap(ErrUnauthenticated)
}

func invalidResetToken() error {
	return oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidResetToken)
}

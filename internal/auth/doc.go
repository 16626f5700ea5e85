// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

// Package auth implements the Redeemr credential and session subsystem.
//
// # Components
//
// The package is built from small, immutable components:
//   - PasswordHasher - salted, cost-parameterized password hashing (bcrypt or argon2id)
//   - Codec - HS256 signing and verification of Claims
//   - SessionIssuer - short-lived bearer session tokens
//   - ResetManager - password reset tokens, optionally single-use via a NonceStore
//   - Authenticator - enumeration-safe password checks against a CredentialLookup
//   - Resolver - maps a bearer token to the Principal it names
//
// Service composes them over a Directory for the login, change-password and
// reset flows.
//
// # Configuration
//
// Secrets and cost parameters are passed in through Params; nothing in this
// package reads the environment. All components are safe for concurrent use
// once constructed.
package auth

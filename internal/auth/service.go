// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Service composes the credential components over a Directory.
type Service struct {
	directory Directory
	hasher    PasswordHasher
	codec     *Codec
	authn     *Authenticator
	sessions  *SessionIssuer
	resets    *ResetManager
	resolver  *Resolver
	logger    *slog.Logger
}

// NewService builds every component from params and wires them to directory.
func NewService(directory Directory, params Params, opts ...Option) (*Service, error) {
	if directory == nil {
		return nil, oops.Errorf("directory is required")
	}
	params = params.withDefaults()

	hasher, err := NewPasswordHasher(params.HashAlgorithm, params.BcryptCost)
	if err != nil {
		return nil, err
	}
	codec, err := NewCodec(params.SigningKey, WithClock(params.Clock))
	if err != nil {
		return nil, err
	}
	return NewServiceWithComponents(directory, hasher, codec, params, opts...)
}

// NewServiceWithComponents wires a Service around an existing hasher and codec.
func NewServiceWithComponents(directory Directory, hasher PasswordHasher, codec *Codec, params Params, opts ...Option) (*Service, error) {
	if directory == nil {
		return nil, oops.Errorf("directory is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Errorf("codec is required")
	}
	params = params.withDefaults()
	o := buildOptions(opts)

	authn, err := NewAuthenticator(directory, hasher, opts...)
	if err != nil {
		return nil, err
	}
	sessions, err := NewSessionIssuer(codec, params.SessionTTL, params.RememberMeFactor)
	if err != nil {
		return nil, err
	}
	resets, err := NewResetManager(codec, params.ResetTTL, opts...)
	if err != nil {
		return nil, err
	}
	resolver, err := NewResolver(codec, directory, opts...)
	if err != nil {
		return nil, err
	}

	return &Service{
		directory: directory,
		hasher:    hasher,
		codec:     codec,
		authn:     authn,
		sessions:  sessions,
		resets:    resets,
		resolver:  resolver,
		logger:    o.logger,
	}, nil
}

// Login authenticates id/password and issues a session token.
func (s *Service) Login(ctx context.Context, id, password string, rememberMe bool) (*AccessToken, *Principal, error) {
	principal, err := s.authn.Authenticate(ctx, id, password)
	if err != nil {
		return nil, nil, err
	}

	now := s.codec.Now()
	if err := s.directory.PersistLastAuthenticatedAt(ctx, principal, now); err != nil {
		s.logger.WarnContext(ctx, "failed to record login time",
			"principal_id", principal.ID,
			"error", err)
	} else {
		principal.LastAuthenticatedAt = &now
	}

	token, err := s.sessions.IssueFor(principal.ID, rememberMe)
	if err != nil {
		return nil, nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue session").
			Wrap(err)
	}
	return token, principal, nil
}

// ChangePassword replaces the credential of id after checking current.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	principal, err := s.authn.Authenticate(ctx, id, current)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.directory.PersistNewHash(ctx, principal, hash); err != nil {
		return oops.Code("AUTH_PASSWORD_CHANGE_FAILED").
			With("principal_id", principal.ID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password changed", "principal_id", principal.ID)
	return nil
}

// RequestReset returns a reset token for id. Unknown identifiers yield an
// empty token and no error so callers cannot tell them apart.
func (s *Service) RequestReset(ctx context.Context, id string) (string, error) {
	principal, err := s.directory.FindPrincipalByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.DebugContext(ctx, "reset requested for unknown principal", "principal_id", id)
			return "", nil
		}
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "find principal").
			Wrap(err)
	}

	token, err := s.resets.CreateResetToken(ctx, principal.ID)
	if err != nil {
		return "", oops.Code("RESET_REQUEST_FAILED").
			With("operation", "create token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset requested", "principal_id", principal.ID)
	return token, nil
}

// ResetPassword sets a new password for id using a reset token. With a
// NonceStore configured the token is spent and cannot be replayed.
func (s *Service) ResetPassword(ctx context.Context, token, id, next string) error {
	if !s.resets.VerifyResetToken(ctx, token, id) {
		return invalidResetToken()
	}

	principal, err := s.directory.FindPrincipalByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalidResetToken()
		}
		return oops.Code("RESET_FAILED").
			With("operation", "find principal").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}

	// Spent only once the new hash exists, so a hashing failure keeps the token usable.
	if !s.resets.ConsumeResetToken(ctx, token, id) {
		return invalidResetToken()
	}

	if err := s.directory.PersistNewHash(ctx, principal, hash); err != nil {
		return oops.Code("RESET_FAILED").
			With("operation", "persist credential").
			With("principal_id", principal.ID).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password reset completed", "principal_id", principal.ID)
	return nil
}

// Resolve returns the principal named by a bearer session token.
func (s *Service) Resolve(ctx context.Context, bearer string) (*Principal, error) {
	return s.resolver.Resolve(ctx, bearer)
}

// Sessions returns the session issuer.
func (s *Service) Sessions() *SessionIssuer {
	return s.sessions
}

// Resets returns the reset manager.
func (s *Service) Resets() *ResetManager {
	return s.resets
}

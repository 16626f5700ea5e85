// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

// Package store provides PostgreSQL connection management.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Pool is the subset of *pgxpool.Pool used by repositories.
// pgxmock.PgxPoolIface satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pinger is implemented by pools that can check connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectConfig controls how Connect waits for the database.
type ConnectConfig struct {
	URL         string
	MaxAttempts uint64
	BaseBackoff time.Duration
}

// DefaultConnectConfig returns the connection settings used by the CLI.
func DefaultConnectConfig(url string) ConnectConfig {
	return ConnectConfig{
		URL:         url,
		MaxAttempts: 5,
		BaseBackoff: 200 * time.Millisecond,
	}
}

// Connect opens a pool and waits until the database answers a ping.
func Connect(ctx context.Context, cfg ConnectConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, oops.Code("DB_URL_REQUIRED").Errorf("database URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, oops.Code("DB_URL_INVALID").Wrap(err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	if err := WaitReady(ctx, pool, cfg.MaxAttempts, cfg.BaseBackoff); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// WaitReady pings p with exponential backoff until it answers or attempts
// are exhausted.
func WaitReady(ctx context.Context, p Pinger, attempts uint64, base time.Duration) error {
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	var retries uint64
	if attempts > 1 {
		retries = attempts - 1
	}
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(base))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_NOT_READY").
			With("attempts", attempts).
			Wrap(err)
	}
	return nil
}

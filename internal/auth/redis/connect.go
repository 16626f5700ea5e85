// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectConfig controls how Connect waits for Redis.
type ConnectConfig struct {
	URL         string
	MaxAttempts uint64
	BaseBackoff time.Duration
}

// DefaultConnectConfig returns the connection settings used by the CLI.
func DefaultConnectConfig(url string) ConnectConfig {
	return ConnectConfig{URL: url, MaxAttempts: 3, BaseBackoff: 200 * time.Millisecond}
}

// Connect parses cfg.URL and pings until the server answers.
func Connect(ctx context.Context, cfg ConnectConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, oops.Code("REDIS_URL_REQUIRED").Errorf("redis URL is required")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, oops.Code("REDIS_URL_INVALID").Wrap(err)
	}

	client := redis.NewClient(opts)
	if err := Healthcheck(client)(ctx, cfg.MaxAttempts, cfg.BaseBackoff); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Healthcheck returns a function that pings client with exponential backoff.
func Healthcheck(client redis.UniversalClient) func(ctx context.Context, attempts uint64, base time.Duration) error {
	return func(ctx context.Context, attempts uint64, base time.Duration) error {
		if base <= 0 {
			base = 200 * time.Millisecond
		}
		var retries uint64
		if attempts > 1 {
			retries = attempts - 1
		}
		err := retry.Do(ctx, retry.WithMaxRetries(retries, retry.NewExponential(base)), func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			return oops.Code("REDIS_NOT_READY").With("attempts", attempts).Wrap(err)
		}
		return nil
	}
}

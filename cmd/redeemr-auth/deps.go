// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/oops"
	"golang.org/x/term"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/internal/auth/postgres"
	"github.com/redeemr/redeemr/internal/auth/redis"
	"github.com/redeemr/redeemr/internal/config"
	"github.com/redeemr/redeemr/internal/store"
)

// Deps contains injectable dependencies for the CLI.
// All fields with nil values will use their default implementations.
type Deps struct {
	// PasswordReader writes prompt to w and reads a password from in.
	// Default: readPasswordInput
	PasswordReader func(in io.Reader, w io.Writer, prompt string) (string, error)

	// DirectoryFactory opens the principal directory.
	// Default: postgres.Directory over cfg.DatabaseURL
	DirectoryFactory func(ctx context.Context, cfg *config.Config) (auth.Directory, func(), error)

	// NonceStoreFactory opens the reset nonce store selected by cfg.ResetStore.
	// A nil store means reset tokens are stateless.
	// Default: openNonceStore
	NonceStoreFactory func(ctx context.Context, cfg *config.Config) (auth.NonceStore, func(), error)

	// MigratorFactory creates a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// Clock is the time source for tokens. Default: time.Now
	Clock func() time.Time
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Pending() ([]uint, error)
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.PasswordReader == nil {
		out.PasswordReader = readPasswordInput
	}
	if out.DirectoryFactory == nil {
		out.DirectoryFactory = openDirectory
	}
	if out.NonceStoreFactory == nil {
		out.NonceStoreFactory = openNonceStore
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (Migrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.Clock == nil {
		out.Clock = time.Now
	}
	return &out
}

// readPassword and isTerminal are test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// readPasswordInput reads without echo when in is a terminal, otherwise it
// reads one line so passwords can be piped in.
func readPasswordInput(in io.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(w)
		if err != nil {
			return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
		}
		return string(pw), nil
	}

	line, err := readLine(in)
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r"), nil
}

// readLine reads up to and excluding the next newline one byte at a time,
// so consecutive prompts can share in without a buffer swallowing input.
func readLine(in io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}

func openDirectory(ctx context.Context, cfg *config.Config) (auth.Directory, func(), error) {
	pool, err := store.Connect(ctx, store.DefaultConnectConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewDirectory(pool), pool.Close, nil
}

func openNonceStore(ctx context.Context, cfg *config.Config) (auth.NonceStore, func(), error) {
	switch cfg.ResetStore {
	case config.ResetStorePostgres:
		pool, err := store.Connect(ctx, store.DefaultConnectConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewNonceStore(pool), pool.Close, nil
	case config.ResetStoreRedis:
		client, err := redis.Connect(ctx, redis.DefaultConnectConfig(cfg.RedisURL))
		if err != nil {
			return nil, nil, err
		}
		return redis.NewNonceStore(client), func() { _ = client.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

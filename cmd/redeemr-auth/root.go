// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/internal/config"
	"github.com/redeemr/redeemr/internal/logging"
)

const serviceName = "redeemr-auth"

// app carries state shared by all subcommands.
type app struct {
	deps       *Deps
	configFile string
	flags      *pflag.FlagSet
}

// NewRootCmd creates the root command. A nil deps uses the defaults.
func NewRootCmd(deps *Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "redeemr-auth",
		Short: "Operate the Redeemr credential and session subsystem",
		Long: `redeemr-auth hashes and verifies passwords, issues and inspects
session tokens, and manages password reset tokens for Redeemr accounts.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/redeemr/auth.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())
	a.flags = cmd.PersistentFlags()

	cmd.AddCommand(newHashCmd(a))
	cmd.AddCommand(newVerifyHashCmd(a))
	cmd.AddCommand(newTokenCmd(a))
	cmd.AddCommand(newResetCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newPasswdCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

// load reads the configuration and builds a logger writing to stderr.
func (a *app) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(a.configFile, a.flags)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.Setup(logging.Config{
		Service: serviceName,
		Version: cmd.Root().Version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// loadValid is load followed by Validate, for commands that sign or verify tokens.
func (a *app) loadValid(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, logger, err := a.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func (a *app) params(cfg *config.Config) auth.Params {
	p := cfg.Params()
	p.Clock = a.deps.Clock
	return p
}

func (a *app) codec(cfg *config.Config) (*auth.Codec, error) {
	return auth.NewCodec([]byte(cfg.SigningKey), auth.WithClock(a.deps.Clock))
}

func (a *app) resetManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*auth.ResetManager, func(), error) {
	codec, err := a.codec(cfg)
	if err != nil {
		return nil, nil, err
	}
	nonces, closeNonces, err := a.deps.NonceStoreFactory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []auth.Option{auth.WithLogger(logger)}
	if nonces != nil {
		opts = append(opts, auth.WithNonceStore(nonces))
	}
	m, err := auth.NewResetManager(codec, cfg.ResetTTL, opts...)
	if err != nil {
		closeNonces()
		return nil, nil, err
	}
	return m, closeNonces, nil
}

// service opens the directory and nonce store and wires an auth.Service.
func (a *app) service(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*auth.Service, func(), error) {
	directory, closeDirectory, err := a.deps.DirectoryFactory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	nonces, closeNonces, err := a.deps.NonceStoreFactory(ctx, cfg)
	if err != nil {
		closeDirectory()
		return nil, nil, err
	}
	cleanup := func() {
		closeNonces()
		closeDirectory()
	}

	opts := []auth.Option{auth.WithLogger(logger)}
	if nonces != nil {
		opts = append(opts, auth.WithNonceStore(nonces))
	}
	svc, err := auth.NewService(directory, a.params(cfg), opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

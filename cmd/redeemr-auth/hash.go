// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/redeemr/redeemr/internal/auth"
)

func newHashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Hash a password with the configured algorithm",
		Long: `Read a password from the terminal (or one line of stdin) and print
its encoded hash, suitable for the users.hashed_password column.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			hasher, err := auth.NewPasswordHasher(cfg.HashAlgorithm, cfg.BcryptCost)
			if err != nil {
				return err
			}
			password, err := a.deps.PasswordReader(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
			encoded, err := hasher.Hash(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return err
		},
	}
}

func newVerifyHashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-hash <hash>",
		Short: "Check a password against an encoded hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			hasher, err := auth.NewPasswordHasher(cfg.HashAlgorithm, cfg.BcryptCost)
			if err != nil {
				return err
			}
			password, err := a.deps.PasswordReader(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
			if !hasher.Verify(password, args[0]) {
				return oops.Code("HASH_MISMATCH").Errorf("password does not match hash")
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, "match"); err != nil {
				return err
			}
			if hasher.NeedsUpgrade(args[0]) {
				_, err = fmt.Fprintf(out, "hash should be upgraded to %s\n", cfg.HashAlgorithm)
			}
			return err
		},
	}
}

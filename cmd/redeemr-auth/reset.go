// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package main

import (
	"context"
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newResetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Manage password reset tokens",
	}
	cmd.AddCommand(newResetCreateCmd(a))
	cmd.AddCommand(newResetRequestCmd(a))
	cmd.AddCommand(newResetVerifyCmd(a))
	cmd.AddCommand(newResetApplyCmd(a))
	cmd.AddCommand(newResetPurgeCmd(a))
	return cmd
}

func newResetCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <principal-id>",
		Short: "Create a reset token for a principal",
		Long: `Create a reset token without consulting the directory. With a reset
store configured the token can be redeemed once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadValid(cmd)
			if err != nil {
				return err
			}
			m, cleanup, err := a.resetManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			token, err := m.CreateResetToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func newResetRequestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "request <principal-id>",
		Short: "Create a reset token for a principal that exists in the directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadValid(cmd)
			if err != nil {
				return err
			}
			svc, cleanup, err := a.service(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			token, err := svc.RequestReset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if token == "" {
				cmd.PrintErrf("no principal %q; no token issued\n", args[0])
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func newResetVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <principal-id> <token>",
		Short: "Check a reset token without consuming it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadValid(cmd)
			if err != nil {
				return err
			}
			m, cleanup, err := a.resetManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if !m.VerifyResetToken(cmd.Context(), args[1], args[0]) {
				return oops.Code("RESET_TOKEN_INVALID").Errorf("reset token is not valid for %s", args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return err
		},
	}
}

func newResetApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <principal-id> <token>",
		Short: "Redeem a reset token and set a new password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.loadValid(cmd)
			if err != nil {
				return err
			}
			svc, cleanup, err := a.service(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			password, err := a.deps.PasswordReader(cmd.InOrStdin(), cmd.ErrOrStderr(), "New password: ")
			if err != nil {
				return err
			}
			if err := svc.ResetPassword(cmd.Context(), args[1], args[0], password); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "password updated")
			return err
		},
	}
}

// expiredPurger is implemented by nonce stores that need explicit cleanup.
type expiredPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

func newResetPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired reset nonces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := a.load(cmd)
			if err != nil {
				return err
			}
			nonces, cleanup, err := a.deps.NonceStoreFactory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			purger, ok := nonces.(expiredPurger)
			if !ok {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "reset store %q needs no purge\n", cfg.ResetStore)
				return err
			}
			n, err := purger.DeleteExpired(cmd.Context())
			if err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "purged expired reset nonces", "count", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired reset nonces\n", n)
			return err
		},
	}
}

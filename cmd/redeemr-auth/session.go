// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var rememberMe bool
	cmd := &cobra.Command{
		Use:   "login <principal-id>",
		Short: "Authenticate against the directory and print a session token",
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

			password, err := a.deps.PasswordReader(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
			token, _, err := svc.Login(cmd.Context(), args[0], password, rememberMe)
			if err != nil {
				return err
			}
			return printJSON(cmd, token)
		},
	}
	cmd.Flags().BoolVar(&rememberMe, "remember-me", false, "issue a long-lived session")
	return cmd
}

func newPasswdCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <principal-id>",
		Short: "Change a password given the current one",
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

			current, err := a.deps.PasswordReader(cmd.InOrStdin(), cmd.ErrOrStderr(), "Current password: ")
			if err != nil {
				return err
			}
			next, err := a.deps.PasswordReader(cmd.InOrStdin(), cmd.ErrOrStderr(), "New password: ")
			if err != nil {
				return err
			}
			if err := svc.ChangePassword(cmd.Context(), args[0], current, next); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "password updated")
			return err
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami <token>",
		Short: "Resolve a session token to its principal",
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

			principal, err := svc.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, principal)
		},
	}
}

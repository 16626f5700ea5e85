// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redeemr/redeemr/internal/config"
)

// configView is the YAML shape printed by config show.
type configView struct {
	SigningKey       string `yaml:"signing_key"`
	HashAlgorithm    string `yaml:"hash_algorithm"`
	BcryptCost       int    `yaml:"bcrypt_cost"`
	SessionTTL       string `yaml:"session_ttl"`
	RememberMeFactor int    `yaml:"remember_me_factor"`
	ResetTTL         string `yaml:"reset_ttl"`
	DatabaseURL      string `yaml:"database_url,omitempty"`
	RedisURL         string `yaml:"redis_url,omitempty"`
	ResetStore       string `yaml:"reset_store"`
	LogFormat        string `yaml:"log_format"`
	LogLevel         string `yaml:"log_level"`
}

func newConfigView(c config.Config) configView {
	return configView{
		SigningKey:       c.SigningKey,
		HashAlgorithm:    c.HashAlgorithm,
		BcryptCost:       c.BcryptCost,
		SessionTTL:       c.SessionTTL.String(),
		RememberMeFactor: c.RememberMeFactor,
		ResetTTL:         c.ResetTTL.String(),
		DatabaseURL:      c.DatabaseURL,
		RedisURL:         c.RedisURL,
		ResetStore:       c.ResetStore,
		LogFormat:        c.LogFormat,
		LogLevel:         c.LogLevel,
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.load(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(newConfigView(cfg.Redacted())); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := a.loadValid(cmd); err != nil {
				return err
			}
			cmd.Println("configuration is valid")
			return nil
		},
	})
	return cmd
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

// Package xdg resolves XDG Base Directory paths for Redeemr.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const (
	appName        = "redeemr"
	configFileName = "auth.yaml"
)

// ConfigDir returns $XDG_CONFIG_HOME/redeemr, falling back to ~/.config/redeemr.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", oops.Code("XDG_HOME_UNKNOWN").Wrap(err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigFile returns the default configuration file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

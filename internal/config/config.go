// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

// Package config loads the auth subsystem configuration.
//
// Sources are layered, later ones winning: built-in defaults, the YAML file,
// a .env file, REDEEMR_* environment variables, then explicitly set flags.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/internal/xdg"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "REDEEMR_"

// MinSigningKeyLength is the shortest signing key Validate accepts, in bytes.
const MinSigningKeyLength = 32

// Reset nonce store backends.
const (
	ResetStoreNone     = "none"
	ResetStorePostgres = "postgres"
	ResetStoreRedis    = "redis"
)

// Config is the flattened configuration. Keys match the YAML file and, upper
// cased with EnvPrefix, the environment.
type Config struct {
	SigningKey       string        `koanf:"signing_key"`
	HashAlgorithm    string        `koanf:"hash_algorithm"`
	BcryptCost       int           `koanf:"bcrypt_cost"`
	SessionTTL       time.Duration `koanf:"session_ttl"`
	RememberMeFactor int           `koanf:"remember_me_factor"`
	ResetTTL         time.Duration `koanf:"reset_ttl"`
	DatabaseURL      string        `koanf:"database_url"`
	RedisURL         string        `koanf:"redis_url"`
	ResetStore       string        `koanf:"reset_store"`
	LogFormat        string        `koanf:"log_format"`
	LogLevel         string        `koanf:"log_level"`
}

// Defaults returns the built-in configuration. SigningKey has no default.
func Defaults() map[string]any {
	return map[string]any{
		"signing_key":        "",
		"hash_algorithm":     auth.AlgorithmBcrypt,
		"bcrypt_cost":        12,
		"session_ttl":        auth.DefaultSessionTTL.String(),
		"remember_me_factor": auth.DefaultRememberMeFactor,
		"reset_ttl":          auth.DefaultResetTTL.String(),
		"database_url":       "",
		"redis_url":          "",
		"reset_store":        ResetStoreNone,
		"log_format":         "json",
		"log_level":          "info",
	}
}

// Load builds a Config. An empty path means the XDG default file, which may be
// absent; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	if err := loadFile(k, path); err != nil {
		return nil, err
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(name, value string) (string, any) {
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if _, known := Defaults()[key]; !known {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "environment").Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := Defaults()[key]; !known {
				return "", nil
			}
			return key, f.Value.String()
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode configuration").Wrap(err)
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = xdg.ConfigFile(); err != nil {
			return nil //nolint:nilerr // no home directory means no default file
		}
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return oops.Code("CONFIG_READ_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// loadDotEnv loads the nearest .env file walking up from the working
// directory. Variables already set in the environment are kept.
func loadDotEnv() error {
	dir, err := os.Getwd()
	if err != nil {
		return nil //nolint:nilerr // no working directory means no .env
	}
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return oops.Code("CONFIG_READ_FAILED").With("path", envPath).Wrap(err)
			}
			return nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case len(c.SigningKey) < MinSigningKeyLength:
		return invalid("signing_key", "signing key must be at least %d bytes", MinSigningKeyLength)
	case c.HashAlgorithm != auth.AlgorithmBcrypt && c.HashAlgorithm != auth.AlgorithmArgon2id:
		return invalid("hash_algorithm", "unknown hash algorithm %q", c.HashAlgorithm)
	case c.BcryptCost != 0 && (c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost):
		return invalid("bcrypt_cost", "bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	case c.SessionTTL <= 0:
		return invalid("session_ttl", "session ttl must be positive")
	case c.RememberMeFactor < 1:
		return invalid("remember_me_factor", "remember-me factor must be at least 1")
	case c.ResetTTL <= 0:
		return invalid("reset_ttl", "reset ttl must be positive")
	case c.LogFormat != "json" && c.LogFormat != "text":
		return invalid("log_format", "log format must be 'json' or 'text', got %q", c.LogFormat)
	}

	switch c.ResetStore {
	case ResetStoreNone:
	case ResetStorePostgres:
		if c.DatabaseURL == "" {
			return invalid("database_url", "database url is required for the postgres reset store")
		}
	case ResetStoreRedis:
		if c.RedisURL == "" {
			return invalid("redis_url", "redis url is required for the redis reset store")
		}
	default:
		return invalid("reset_store", "reset store must be none, postgres or redis, got %q", c.ResetStore)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("field", field).Errorf(format, args...)
}

// Params converts the configuration into auth.Params.
func (c *Config) Params() auth.Params {
	return auth.Params{
		SigningKey:       []byte(c.SigningKey),
		HashAlgorithm:    c.HashAlgorithm,
		BcryptCost:       c.BcryptCost,
		SessionTTL:       c.SessionTTL,
		RememberMeFactor: c.RememberMeFactor,
		ResetTTL:         c.ResetTTL,
	}
}

// Redacted returns a copy safe to print, with the signing key and URL
// credentials masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.SigningKey != "" {
		out.SigningKey = "[REDACTED]"
	}
	out.DatabaseURL = redactURL(out.DatabaseURL)
	out.RedisURL = redactURL(out.RedisURL)
	return out
}

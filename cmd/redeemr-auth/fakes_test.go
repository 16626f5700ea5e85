// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/internal/config"
)

const testSigningKey = "cli-test-signing-key-0123456789abcdef"

type account struct {
	principal auth.Principal
	hash      string
}

// memDirectory is an in-memory auth.Directory.
type memDirectory struct {
	mu       sync.Mutex
	accounts map[string]*account
}

func newMemDirectory(t *testing.T, id, password string) *memDirectory {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &memDirectory{accounts: map[string]*account{
		id: {
			principal: auth.Principal{ID: id, Name: "Alice"},
			hash:      string(hash),
		},
	}}
}

func (d *memDirectory) FindPrincipalByID(_ context.Context, id string) (*auth.Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.accounts[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	p := acct.principal
	return &p, nil
}

func (d *memDirectory) StoredHash(_ context.Context, p *auth.Principal) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.accounts[p.ID]
	if !ok {
		return "", auth.ErrNotFound
	}
	return acct.hash, nil
}

func (d *memDirectory) PersistNewHash(_ context.Context, p *auth.Principal, hash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[p.ID].hash = hash
	return nil
}

func (d *memDirectory) PersistLastAuthenticatedAt(_ context.Context, p *auth.Principal, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[p.ID].principal.LastAuthenticatedAt = &at
	return nil
}

// memNonces is an in-memory auth.NonceStore that also supports purging.
type memNonces struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]nonceEntry
}

type nonceEntry struct {
	principalID string
	expiresAt   time.Time
}

func newMemNonces(now func() time.Time) *memNonces {
	return &memNonces{now: now, entries: make(map[string]nonceEntry)}
}

func (s *memNonces) Save(_ context.Context, principalID, nonceHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[nonceHash] = nonceEntry{principalID: principalID, expiresAt: expiresAt}
	return nil
}

func (s *memNonces) live(principalID, nonceHash string) bool {
	e, ok := s.entries[nonceHash]
	return ok && e.principalID == principalID && e.expiresAt.After(s.now())
}

func (s *memNonces) Exists(_ context.Context, principalID, nonceHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(principalID, nonceHash), nil
}

func (s *memNonces) Consume(_ context.Context, principalID, nonceHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(principalID, nonceHash) {
		return false, nil
	}
	delete(s.entries, nonceHash)
	return true, nil
}

func (s *memNonces) DeleteExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, e := range s.entries {
		if !e.expiresAt.After(s.now()) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

type fakeMigrator struct {
	version uint
	dirty   bool
	pending []uint
	ups     int
	downs   int
	closed  bool
}

func (m *fakeMigrator) Up() error {
	m.ups++
	m.version = 2
	m.pending = nil
	return nil
}

func (m *fakeMigrator) Down() error {
	m.downs++
	m.version = 0
	return nil
}

func (m *fakeMigrator) Version() (uint, bool, error) { return m.version, m.dirty, nil }
func (m *fakeMigrator) Pending() ([]uint, error)     { return m.pending, nil }

func (m *fakeMigrator) Close() error {
	m.closed = true
	return nil
}

// harness wires fakes into Deps.
type harness struct {
	now       time.Time
	directory *memDirectory
	nonces    *memNonces
	migrator  *fakeMigrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	isolateEnv(t)
	h := &harness{
		now:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		directory: newMemDirectory(t, "alice@example.com", "hunter2"),
		migrator:  &fakeMigrator{version: 1, pending: []uint{2}},
	}
	h.nonces = newMemNonces(h.clock)
	return h
}

func (h *harness) clock() time.Time { return h.now }

func (h *harness) deps() *Deps {
	return &Deps{
		DirectoryFactory: func(context.Context, *config.Config) (auth.Directory, func(), error) {
			return h.directory, func() {}, nil
		},
		NonceStoreFactory: func(_ context.Context, cfg *config.Config) (auth.NonceStore, func(), error) {
			if cfg.ResetStore == config.ResetStoreNone {
				return nil, func() {}, nil
			}
			return h.nonces, func() {}, nil
		},
		MigratorFactory: func(string) (Migrator, error) { return h.migrator, nil },
		Clock:           h.clock,
	}
}

// run executes the CLI with stdin and returns stdout and stderr.
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	cmd := NewRootCmd(h.deps())
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// isolateEnv clears REDEEMR_* variables, moves into an empty directory and
// sets a valid signing key with the cheapest bcrypt cost.
func isolateEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for key := range config.Defaults() {
		name := config.EnvPrefix + strings.ToUpper(key)
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv("REDEEMR_SIGNING_KEY", testSigningKey)
	t.Setenv("REDEEMR_BCRYPT_COST", "4")
	t.Setenv("REDEEMR_LOG_LEVEL", "error")
}

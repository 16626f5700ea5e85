// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/redeemr/redeemr/internal/auth"
	"github.com/redeemr/redeemr/internal/auth/postgres"
	"github.com/redeemr/redeemr/internal/store"
)

var (
	pool      *pgxpool.Pool
	container *tcpostgres.PostgresContainer
)

var _ = BeforeSuite(func() {
	ctx := context.Background()
	var err error
	container, err = tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("redeemr_test"),
		tcpostgres.WithUsername("redeemr"),
		tcpostgres.WithPassword("redeemr"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	Expect(err).NotTo(HaveOccurred())

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).NotTo(HaveOccurred())

	migrator, err := store.NewMigrator(connStr)
	Expect(err).NotTo(HaveOccurred())
	Expect(migrator.Up()).To(Succeed())
	Expect(migrator.Close()).To(Succeed())

	pool, err = store.Connect(ctx, store.DefaultConnectConfig(connStr))
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if pool != nil {
		pool.Close()
	}
	if container != nil {
		_ = container.Terminate(context.Background())
	}
})

func insertUser(ctx context.Context, email, password string, active bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	Expect(err).NotTo(HaveOccurred())
	_, err = pool.Exec(ctx, `
		INSERT INTO users (email, name, hashed_password, is_active)
		VALUES ($1, $2, $3, $4)
	`, email, "Test User", string(hash), active)
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("Service over PostgreSQL", func() {
	var (
		ctx     context.Context
		service *auth.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		_, err := pool.Exec(ctx, `TRUNCATE users, password_resets`)
		Expect(err).NotTo(HaveOccurred())

		service, err = auth.NewService(postgres.NewDirectory(pool), auth.Params{
			SigningKey: []byte("integration-signing-key-0123456789abcdef"),
			BcryptCost: bcrypt.MinCost,
		}, auth.WithNonceStore(postgres.NewNonceStore(pool)))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Login", func() {
		It("issues a token that resolves to the principal", func() {
			insertUser(ctx, "alice@example.com", "hunter2", true)

			token, principal, err := service.Login(ctx, "alice@example.com", "hunter2", false)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.ID).To(Equal("alice@example.com"))
			Expect(principal.LastAuthenticatedAt).NotTo(BeNil())

			resolved, err := service.Resolve(ctx, token.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved.ID).To(Equal("alice@example.com"))
			Expect(resolved.LastAuthenticatedAt).NotTo(BeNil())
		})

		It("rejects unknown principals and wrong passwords alike", func() {
			insertUser(ctx, "alice@example.com", "hunter2", true)

			_, _, errUnknown := service.Login(ctx, "nobody@example.com", "hunter2", false)
			_, _, errWrong := service.Login(ctx, "alice@example.com", "wrong", false)
			Expect(errUnknown).To(MatchError(auth.ErrInvalidCredentials))
			Expect(errWrong).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects inactive principals", func() {
			insertUser(ctx, "bob@example.com", "hunter2", false)

			_, _, err := service.Login(ctx, "bob@example.com", "hunter2", false)
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("refuses sessions of principals deactivated after login", func() {
			insertUser(ctx, "carol@example.com", "hunter2", true)
			tok, _, err := service.Login(ctx, "carol@example.com", "hunter2", false)
			Expect(err).NotTo(HaveOccurred())

			_, err = pool.Exec(ctx, `UPDATE users SET is_active = FALSE WHERE email = $1`, "carol@example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Resolve(ctx, tok.Token)
			Expect(err).To(MatchError(auth.ErrUnauthenticated))
		})
	})

	Describe("password reset", func() {
		It("accepts a reset token exactly once", func() {
			insertUser(ctx, "alice@example.com", "hunter2", true)

			token, err := service.RequestReset(ctx, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			var outstanding int
			Expect(pool.QueryRow(ctx, `SELECT count(*) FROM password_resets`).Scan(&outstanding)).To(Succeed())
			Expect(outstanding).To(Equal(1))

			Expect(service.ResetPassword(ctx, token, "alice@example.com", "correct horse")).To(Succeed())
			Expect(service.ResetPassword(ctx, token, "alice@example.com", "again")).
				To(MatchError(auth.ErrInvalidResetToken))

			_, _, err = service.Login(ctx, "alice@example.com", "correct horse", false)
			Expect(err).NotTo(HaveOccurred())
		})

		It("purges expired nonces", func() {
			nonces := postgres.NewNonceStore(pool)
			Expect(nonces.Save(ctx, "alice@example.com", "deadbeef", time.Now().Add(-time.Minute))).To(Succeed())
			Expect(nonces.Save(ctx, "alice@example.com", "cafebabe", time.Now().Add(time.Hour))).To(Succeed())

			n, err := nonces.DeleteExpired(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			ok, err := nonces.Exists(ctx, "alice@example.com", "cafebabe")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})
})

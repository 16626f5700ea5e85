// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

//go:build integration

package redis_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/redeemr/redeemr/internal/auth/redis"
)

var _ = Describe("NonceStore", func() {
	var (
		ctx       context.Context
		container testcontainers.Container
		client    *goredis.Client
		store     *redis.NonceStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		Expect(err).NotTo(HaveOccurred())

		endpoint, err := container.Endpoint(ctx, "redis")
		Expect(err).NotTo(HaveOccurred())

		client, err = redis.Connect(ctx, redis.DefaultConnectConfig(endpoint+"/0"))
		Expect(err).NotTo(HaveOccurred())
		store = redis.NewNonceStore(client)
	})

	AfterEach(func() {
		_ = client.Close()
		_ = container.Terminate(ctx)
	})

	It("saves with a TTL and reports existence per principal", func() {
		Expect(store.Save(ctx, "alice@example.com", "abc", time.Now().Add(time.Hour))).To(Succeed())

		ttl, err := client.TTL(ctx, redis.KeyPrefix+"abc").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(ttl).To(BeNumerically(">", 59*time.Minute))

		ok, err := store.Exists(ctx, "alice@example.com", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = store.Exists(ctx, "mallory@example.com", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("does not store nonces that already expired", func() {
		Expect(store.Save(ctx, "alice@example.com", "old", time.Now().Add(-time.Second))).To(Succeed())

		ok, err := store.Exists(ctx, "alice@example.com", "old")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("lets exactly one concurrent consumer win", func() {
		Expect(store.Save(ctx, "alice@example.com", "race", time.Now().Add(time.Hour))).To(Succeed())

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				ok, err := store.Consume(ctx, "alice@example.com", "race")
				Expect(err).NotTo(HaveOccurred())
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		Expect(wins.Load()).To(Equal(int32(1)))
	})

	It("refuses to consume another principal's nonce", func() {
		Expect(store.Save(ctx, "alice@example.com", "abc", time.Now().Add(time.Hour))).To(Succeed())

		ok, err := store.Consume(ctx, "mallory@example.com", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		ok, err = store.Exists(ctx, "alice@example.com", "abc")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})
})

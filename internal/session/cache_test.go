// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonguedex/tonguedex/internal/session"
)

func cachedSession(t *testing.T, tokenHash string, expiresAt time.Time) *session.Session {
	t.Helper()
	sess, err := session.NewSession(ulid.Make(), tokenHash, session.PolicySliding, expiresAt)
	require.NoError(t, err)
	return sess
}

func TestMemoryCache(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	t.Run("put then get", func(t *testing.T) {
		cache := session.NewMemoryCache()
		sess := cachedSession(t, "hash-a", expiry)
		cache.Put(sess)

		got, ok := cache.Get("hash-a")
		require.True(t, ok)
		assert.Equal(t, sess.ID, got.ID)
	})

	t.Run("miss on unknown hash", func(t *testing.T) {
		cache := session.NewMemoryCache()
		_, ok := cache.Get("nope")
		assert.False(t, ok)
	})

	t.Run("put replaces prior entry", func(t *testing.T) {
		cache := session.NewMemoryCache()
		cache.Put(cachedSession(t, "hash-a", expiry))
		replacement := cachedSession(t, "hash-a", expiry.Add(time.Hour))
		cache.Put(replacement)

		got, ok := cache.Get("hash-a")
		require.True(t, ok)
		assert.Equal(t, replacement.ID, got.ID)
		assert.Equal(t, 1, cache.Len())
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		cache := session.NewMemoryCache()
		cache.Put(cachedSession(t, "hash-a", expiry))
		cache.Delete("hash-a")
		cache.Delete("hash-a")

		_, ok := cache.Get("hash-a")
		assert.False(t, ok)
	})

	t.Run("purge removes only expired entries", func(t *testing.T) {
		cache := session.NewMemoryCache()
		now := time.Now()
		cache.Put(cachedSession(t, "live", now.Add(time.Hour)))
		cache.Put(cachedSession(t, "dead-1", now.Add(-time.Hour)))
		cache.Put(cachedSession(t, "dead-2", now.Add(-time.Minute)))

		purged := cache.PurgeExpired(now)
		assert.Equal(t, 2, purged)
		assert.Equal(t, 1, cache.Len())

		_, ok := cache.Get("live")
		assert.True(t, ok)
	})
}

func TestMemoryCacheConcurrency(t *testing.T) {
	cache := session.NewMemoryCache()
	expiry := time.Now().Add(time.Hour)
	sess := cachedSession(t, "shared", expiry)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				cache.Put(sess)
				cache.Delete("shared")
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				cache.Get("shared")
				cache.PurgeExpired(expiry.Add(time.Hour))
			}
		}()
	}
	wg.Wait()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonguedex/tonguedex/internal/session"
)

// fakeRepo is an in-memory session.Repository keyed by token hash.
type fakeRepo struct {
	sessions map[string]*session.Session

	getErr    error
	updateErr error
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*session.Session)}
}

func (f *fakeRepo) Create(_ context.Context, sess *session.Session) error {
	copied := *sess
	f.sessions[sess.TokenHash] = &copied
	return nil
}

func (f *fakeRepo) GetByTokenHash(_ context.Context, tokenHash string) (*session.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	sess, ok := f.sessions[tokenHash]
	if !ok {
		return nil, session.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

func (f *fakeRepo) UpdateExpiry(_ context.Context, id ulid.ULID, expiresAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, sess := range f.sessions {
		if sess.ID == id {
			sess.ExpiresAt = expiresAt
			return nil
		}
	}
	return session.ErrNotFound
}

func (f *fakeRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.sessions, tokenHash)
	return nil
}

func (f *fakeRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var deleted int64
	for hash, sess := range f.sessions {
		if sess.IsExpiredAt(now) {
			delete(f.sessions, hash)
			deleted++
		}
	}
	return deleted, nil
}

// testClock is a settable time source.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(t *testing.T, repo *fakeRepo, cache *session.MemoryCache, clock *testClock) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(repo, cache, session.DefaultManagerConfig())
	require.NoError(t, err)
	return mgr.WithClock(clock.Now)
}

func TestNewManager(t *testing.T) {
	t.Run("rejects nil repository", func(t *testing.T) {
		_, err := session.NewManager(nil, session.NewMemoryCache(), session.DefaultManagerConfig())
		assert.Error(t, err)
	})

	t.Run("rejects nil cache", func(t *testing.T) {
		_, err := session.NewManager(newFakeRepo(), nil, session.DefaultManagerConfig())
		assert.Error(t, err)
	})

	t.Run("zero config falls back to defaults", func(t *testing.T) {
		_, err := session.NewManager(newFakeRepo(), session.NewMemoryCache(), session.ManagerConfig{})
		assert.NoError(t, err)
	})
}

func TestManagerCreate(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}

	t.Run("default session slides", func(t *testing.T) {
		repo := newFakeRepo()
		cache := session.NewMemoryCache()
		mgr := newTestManager(t, repo, cache, clock)

		token, sess, err := mgr.Create(ctx, ulid.Make(), false)
		require.NoError(t, err)

		assert.Equal(t, session.PolicySliding, sess.Policy)
		assert.Equal(t, clock.Now().Add(session.DefaultSlidingTTL), sess.ExpiresAt)
		assert.NotContains(t, sess.TokenHash, token, "plaintext token must not be stored")

		// Written to both tiers.
		assert.Equal(t, 1, cache.Len())
		assert.Len(t, repo.sessions, 1)
	})

	t.Run("remember-me session is fixed", func(t *testing.T) {
		repo := newFakeRepo()
		mgr := newTestManager(t, repo, session.NewMemoryCache(), clock)

		_, sess, err := mgr.Create(ctx, ulid.Make(), true)
		require.NoError(t, err)

		assert.Equal(t, session.PolicyFixed, sess.Policy)
		assert.Equal(t, clock.Now().Add(session.DefaultRememberTTL), sess.ExpiresAt)
	})
}

func TestManagerValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token is ErrNotFound", func(t *testing.T) {
		clock := &testClock{now: time.Now()}
		mgr := newTestManager(t, newFakeRepo(), session.NewMemoryCache(), clock)

		_, err := mgr.Validate(ctx, "no-such-token")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("empty token is ErrNotFound", func(t *testing.T) {
		clock := &testClock{now: time.Now()}
		mgr := newTestManager(t, newFakeRepo(), session.NewMemoryCache(), clock)

		_, err := mgr.Validate(ctx, "")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("sliding session survives steady activity past the window", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
		repo := newFakeRepo()
		mgr := newTestManager(t, repo, session.NewMemoryCache(), clock)

		token, _, err := mgr.Create(ctx, ulid.Make(), false)
		require.NoError(t, err)

		// 45 days of access at 15-day intervals, each well inside the
		// 30-day inactivity window. Total elapsed time exceeds the
		// window but the session keeps sliding.
		for range 3 {
			clock.Advance(15 * 24 * time.Hour)
			sess, err := mgr.Validate(ctx, token)
			require.NoError(t, err)
			assert.Equal(t, clock.Now().Add(session.DefaultSlidingTTL), sess.ExpiresAt)
		}
	})

	t.Run("sliding session dies after a full idle window", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
		repo := newFakeRepo()
		cache := session.NewMemoryCache()
		mgr := newTestManager(t, repo, cache, clock)

		token, _, err := mgr.Create(ctx, ulid.Make(), false)
		require.NoError(t, err)

		clock.Advance(session.DefaultSlidingTTL + time.Second)
		_, err = mgr.Validate(ctx, token)
		assert.ErrorIs(t, err, session.ErrNotFound)

		// The expired row is deleted eagerly, not left for the sweep.
		assert.Empty(t, repo.sessions)
		assert.Equal(t, 0, cache.Len())
	})

	t.Run("fixed session never extends", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
		repo := newFakeRepo()
		mgr := newTestManager(t, repo, session.NewMemoryCache(), clock)

		token, created, err := mgr.Create(ctx, ulid.Make(), true)
		require.NoError(t, err)

		clock.Advance(29 * 24 * time.Hour)
		sess, err := mgr.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, created.ExpiresAt, sess.ExpiresAt, "access must not move fixed expiry")

		// Past the absolute deadline, even though the last access was
		// recent.
		clock.Advance(2 * 24 * time.Hour)
		_, err = mgr.Validate(ctx, token)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("cache miss falls through to the durable store", func(t *testing.T) {
		clock := &testClock{now: time.Now()}
		repo := newFakeRepo()
		cache := session.NewMemoryCache()
		mgr := newTestManager(t, repo, cache, clock)

		token, _, err := mgr.Create(ctx, ulid.Make(), false)
		require.NoError(t, err)

		// Simulate a restart: the cache is gone, the store is not.
		cache.Delete(session.HashToken(token))

		sess, err := mgr.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.Len(), "fall-through repopulates the cache")
		assert.NotNil(t, sess)
	})

	t.Run("sliding persist failure still validates without extending", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
		repo := newFakeRepo()
		mgr := newTestManager(t, repo, session.NewMemoryCache(), clock)

		token, created, err := mgr.Create(ctx, ulid.Make(), false)
		require.NoError(t, err)

		repo.updateErr = errors.New("connection refused")
		clock.Advance(time.Hour)

		sess, err := mgr.Validate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, created.ExpiresAt, sess.ExpiresAt, "unpersisted slide must not be reported")
	})

	t.Run("store failure surfaces as an error", func(t *testing.T) {
		clock := &testClock{now: time.Now()}
		repo := newFakeRepo()
		repo.getErr = errors.New("connection refused")
		mgr := newTestManager(t, repo, session.NewMemoryCache(), clock)

		_, err := mgr.Validate(ctx, "sometoken")
		require.Error(t, err)
		assert.NotErrorIs(t, err, session.ErrNotFound)
	})
}

func TestManagerRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked token validates no more", func(t *testing.T) {
		clock := &testClock{now: time.Now()}
		repo := newFakeRepo()
		mgr := newTestManager(t, repo, session.NewMemoryCache(), clock)

		token, _, err := mgr.Create(ctx, ulid.Make(), false)
		require.NoError(t, err)

		require.NoError(t, mgr.Revoke(ctx, token))

		_, err = mgr.Validate(ctx, token)
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.Empty(t, repo.sessions)
	})

	t.Run("revoking an unknown token is a no-op", func(t *testing.T) {
		clock := &testClock{now: time.Now()}
		mgr := newTestManager(t, newFakeRepo(), session.NewMemoryCache(), clock)

		assert.NoError(t, mgr.Revoke(ctx, "never-issued"))
		assert.NoError(t, mgr.Revoke(ctx, ""))
	})
}

func TestManagerSweepExpired(t *testing.T) {
	ctx := context.Background()
	clock := &testClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newFakeRepo()
	cache := session.NewMemoryCache()
	mgr := newTestManager(t, repo, cache, clock)

	live, _, err := mgr.Create(ctx, ulid.Make(), true)
	require.NoError(t, err)
	doomedA, _, err := mgr.Create(ctx, ulid.Make(), false)
	require.NoError(t, err)
	doomedB, _, err := mgr.Create(ctx, ulid.Make(), false)
	require.NoError(t, err)

	// Keep the fixed session alive by hand and let the sliding pair
	// idle out.
	repo.sessions[session.HashToken(live)].ExpiresAt = clock.Now().Add(90 * 24 * time.Hour)
	cache.Put(repo.sessions[session.HashToken(live)])
	clock.Advance(session.DefaultSlidingTTL + time.Hour)

	deleted, err := mgr.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Len(t, repo.sessions, 1)
	assert.Equal(t, 1, cache.Len())

	for _, doomed := range []string{doomedA, doomedB} {
		_, err := mgr.Validate(ctx, doomed)
		assert.ErrorIs(t, err, session.ErrNotFound)
	}
}

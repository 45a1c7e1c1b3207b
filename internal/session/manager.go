// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Default expiry windows. The remember-me window is fixed at creation;
// the sliding window is an inactivity timeout.
const (
	DefaultSlidingTTL  = 30 * 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
)

// ManagerConfig tunes session lifetimes.
type ManagerConfig struct {
	// SlidingTTL is the inactivity window for default sessions. Each
	// validated access pushes expiry this far into the future.
	SlidingTTL time.Duration

	// RememberTTL is the absolute lifetime of remember-me sessions,
	// counted from creation.
	RememberTTL time.Duration
}

// DefaultManagerConfig returns the default session lifetimes.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		SlidingTTL:  DefaultSlidingTTL,
		RememberTTL: DefaultRememberTTL,
	}
}

// Manager issues, validates, and revokes sessions over a two-tier store.
//
// Writes go to both tiers. Reads hit the cache first and fall through to
// the durable store on a miss; the durable store alone is authoritative.
type Manager struct {
	repo   Repository
	cache  Cache
	cfg    ManagerConfig
	logger *slog.Logger
	clock  func() time.Time
}

// NewManager creates a session Manager.
func NewManager(repo Repository, cache Cache, cfg ManagerConfig) (*Manager, error) {
	if repo == nil {
		return nil, oops.Code("SESSION_BAD_DEPS").Errorf("session repository is required")
	}
	if cache == nil {
		return nil, oops.Code("SESSION_BAD_DEPS").Errorf("session cache is required")
	}
	if cfg.SlidingTTL <= 0 {
		cfg.SlidingTTL = DefaultSlidingTTL
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = DefaultRememberTTL
	}
	return &Manager{
		repo:   repo,
		cache:  cache,
		cfg:    cfg,
		logger: slog.Default(),
		clock:  time.Now,
	}, nil
}

// WithClock replaces the time source. Tests use this to step through
// expiry windows deterministically.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// Create issues a new session for an identity and returns the plaintext
// token. remember selects the fixed 30-day policy; the default policy
// slides on each access.
func (m *Manager) Create(ctx context.Context, identityID ulid.ULID, remember bool) (string, *Session, error) {
	token, tokenHash, err := GenerateToken()
	if err != nil {
		return "", nil, err
	}

	now := m.clock()
	policy := PolicySliding
	ttl := m.cfg.SlidingTTL
	if remember {
		policy = PolicyFixed
		ttl = m.cfg.RememberTTL
	}

	sess, err := NewSession(identityID, tokenHash, policy, now.Add(ttl))
	if err != nil {
		return "", nil, err
	}

	if err := m.repo.Create(ctx, sess); err != nil {
		return "", nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}
	m.cache.Put(sess)

	return token, sess, nil
}

// Validate resolves a token to its session. An expired session behaves
// exactly like an absent one: ErrNotFound, plus a best-effort delete so
// the row does not linger until the next sweep. Sliding sessions get
// their expiry pushed forward in both tiers.
func (m *Manager) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	tokenHash := HashToken(token)

	sess, ok := m.cache.Get(tokenHash)
	if ok {
		CacheLookups.WithLabelValues("hit").Inc()
	} else {
		CacheLookups.WithLabelValues("miss").Inc()
		var err error
		sess, err = m.repo.GetByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, oops.Code("SESSION_VALIDATE_FAILED").
				With("operation", "get session by token hash").
				Wrap(err)
		}
		m.cache.Put(sess)
	}

	now := m.clock()
	if sess.IsExpiredAt(now) {
		m.cache.Delete(tokenHash)
		if err := m.repo.DeleteByTokenHash(ctx, tokenHash); err != nil {
			m.logger.Warn("failed to delete expired session",
				slog.String("session_id", sess.ID.String()),
				slog.Any("error", err))
		}
		return nil, ErrNotFound
	}

	if sess.Policy == PolicySliding {
		extended := *sess
		extended.ExpiresAt = now.Add(m.cfg.SlidingTTL)
		// Validation succeeds even if the slide cannot be persisted;
		// the session just expires on its previous schedule.
		if err := m.repo.UpdateExpiry(ctx, sess.ID, extended.ExpiresAt); err != nil {
			m.logger.Warn("failed to extend sliding session",
				slog.String("session_id", sess.ID.String()),
				slog.Any("error", err))
			return sess, nil
		}
		m.cache.Put(&extended)
		return &extended, nil
	}

	return sess, nil
}

// Revoke deletes a session immediately from both tiers. Revoking an
// unknown token is a no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	tokenHash := HashToken(token)

	m.cache.Delete(tokenHash)
	if err := m.repo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		return oops.Code("SESSION_REVOKE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// SweepExpired removes expired sessions from the durable store and
// purges the cache. The sweeper calls this on its interval.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	now := m.clock()
	purged := m.cache.PurgeExpired(now)

	deleted, err := m.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	if deleted > 0 {
		SweptSessions.Add(float64(deleted))
	}
	if deleted > 0 || purged > 0 {
		m.logger.Info("swept expired sessions",
			slog.Int64("store_deleted", deleted),
			slog.Int("cache_purged", purged))
	}
	return deleted, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package session issues, validates, and expires opaque session tokens.
//
// Sessions are read through an injected in-memory cache backed by a
// durable store. The cache is a pure optimization: a miss always falls
// through to the store, and the store is the only source of truth.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// TokenBytes is the entropy of a session token (hex-encodes to 64 chars).
const TokenBytes = 32

// Policy tags how a session's expiry behaves. The two variants are
// explicit; nothing branches on an untyped boolean.
type Policy string

const (
	// PolicySliding recomputes expiry on every validated access, so the
	// session dies only after a full inactivity window.
	PolicySliding Policy = "sliding"

	// PolicyFixed sets expiry once at creation. Intermediate accesses
	// never extend it. This is the "remember me" path.
	PolicyFixed Policy = "fixed"
)

// Session links a token (stored hashed) to an identity and an expiry.
type Session struct {
	ID         ulid.ULID
	IdentityID ulid.ULID
	TokenHash  string
	Policy     Policy
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// NewSession creates a validated Session.
func NewSession(identityID ulid.ULID, tokenHash string, policy Policy, expiresAt time.Time) (*Session, error) {
	if identityID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_IDENTITY").Errorf("identity ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if policy != PolicySliding && policy != PolicyFixed {
		return nil, oops.Code("SESSION_INVALID_POLICY").Errorf("unknown session policy: %s", policy)
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &Session{
		ID:         ulid.Make(),
		IdentityID: identityID,
		TokenHash:  tokenHash,
		Policy:     policy,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now(),
	}, nil
}

// IsExpiredAt reports whether the session is expired at the given time.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// GenerateToken creates a secure random token and its storage hash.
// The plaintext token goes to the client; only the hash is ever stored.
func GenerateToken() (token, hash string, err error) {
	raw := make([]byte, TokenBytes)
	if _, err = rand.Read(raw); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	token = hex.EncodeToString(raw)
	return token, HashToken(token), nil
}

// HashToken computes the SHA-256 hash under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Repository is the durable session store.
type Repository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash. Returns
	// ErrNotFound when no session exists.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// UpdateExpiry moves a session's expiry. Used by the sliding policy.
	UpdateExpiry(ctx context.Context, id ulid.ULID, expiresAt time.Time) error

	// DeleteByTokenHash removes a session. Deleting an absent session
	// is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteExpired removes every session past its expiry and returns
	// the number of rows deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

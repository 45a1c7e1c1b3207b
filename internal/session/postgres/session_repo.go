// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package postgres implements the durable session store using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tonguedex/tonguedex/internal/session"
	"github.com/tonguedex/tonguedex/internal/store"
)

// SessionRepository implements session.Repository using PostgreSQL.
type SessionRepository struct {
	db store.Querier
}

// NewSessionRepository creates a SessionRepository.
func NewSessionRepository(db store.Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, identity_id, token_hash, policy, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		sess.ID.String(),
		sess.IdentityID.String(),
		sess.TokenHash,
		string(sess.Policy),
		sess.ExpiresAt,
		sess.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("identity_id", sess.IdentityID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, identity_id, token_hash, policy, expires_at, created_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)

	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(session.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	return sess, nil
}

// UpdateExpiry moves a session's expiry forward.
func (r *SessionRepository) UpdateExpiry(ctx context.Context, id ulid.ULID, expiresAt time.Time) error {
	result, err := r.db.Exec(ctx, `
		UPDATE sessions SET expires_at = $2 WHERE id = $1
	`, id.String(), expiresAt)
	if err != nil {
		return oops.Code("SESSION_UPDATE_EXPIRY_FAILED").
			With("operation", "update expires_at").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(session.ErrNotFound)
	}
	return nil
}

// DeleteByTokenHash removes a session. No rows deleted is a valid state.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes every session past its expiry.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE expires_at < $1
	`, now)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanSession scans one row into a Session. Callers handle pgx.ErrNoRows.
func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		idStr         string
		identityIDStr string
		tokenHash     string
		policy        string
		expiresAt     time.Time
		createdAt     time.Time
	)

	if err := row.Scan(&idStr, &identityIDStr, &tokenHash, &policy, &expiresAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").
			With("operation", "parse session id").
			With("id", idStr).
			Wrap(err)
	}
	identityID, err := ulid.Parse(identityIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_IDENTITY_ID").
			With("operation", "parse identity id").
			With("identity_id", identityIDStr).
			Wrap(err)
	}

	return &session.Session{
		ID:         id,
		IdentityID: identityID,
		TokenHash:  tokenHash,
		Policy:     session.Policy(policy),
		ExpiresAt:  expiresAt,
		CreatedAt:  createdAt,
	}, nil
}

// Compile-time interface check.
var _ session.Repository = (*SessionRepository)(nil)

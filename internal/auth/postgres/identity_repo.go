// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package postgres implements the auth repositories using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tonguedex/tonguedex/internal/auth"
	"github.com/tonguedex/tonguedex/internal/store"
)

// IdentityRepository implements auth.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	db store.Querier
}

// NewIdentityRepository creates an IdentityRepository.
func NewIdentityRepository(db store.Querier) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create stores a new identity. A hit on the unique email index maps to
// auth.ErrEmailTaken so the service's pre-check and the constraint agree.
func (r *IdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO identities (id, name, email, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		identity.ID.String(),
		identity.Name,
		identity.Email,
		identity.PasswordHash,
		identity.IsActive,
		identity.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("IDENTITY_EMAIL_TAKEN").
				With("operation", "insert identity").
				Wrap(auth.ErrEmailTaken)
		}
		return oops.Code("IDENTITY_CREATE_FAILED").
			With("operation", "insert identity").
			With("id", identity.ID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, is_active, created_at
		FROM identities
		WHERE id = $1
	`, id.String())

	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("IDENTITY_GET_BY_ID_FAILED").
			With("operation", "get identity by id").
			With("id", id.String()).
			Wrap(err)
	}
	return identity, nil
}

// FindByEmail retrieves every identity stored under the email. The
// comparison is exact (case-sensitive as stored). No LIMIT 1: duplicates
// must come back so the backend can surface the anomaly.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) ([]*auth.Identity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, password_hash, is_active, created_at
		FROM identities
		WHERE email = $1
		ORDER BY id
	`, email)
	if err != nil {
		return nil, oops.Code("IDENTITY_FIND_BY_EMAIL_FAILED").
			With("operation", "find identities by email").
			Wrap(err)
	}
	defer rows.Close()

	var identities []*auth.Identity
	for rows.Next() {
		identity, scanErr := scanIdentity(rows)
		if scanErr != nil {
			return nil, oops.Code("IDENTITY_SCAN_FAILED").
				With("operation", "scan identity row").
				Wrap(scanErr)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("IDENTITY_ROWS_ERROR").
			With("operation", "iterate identity rows").
			Wrap(err)
	}
	return identities, nil
}

// SetActive toggles the active flag on an identity.
func (r *IdentityRepository) SetActive(ctx context.Context, id ulid.ULID, active bool) error {
	result, err := r.db.Exec(ctx, `
		UPDATE identities SET is_active = $2 WHERE id = $1
	`, id.String(), active)
	if err != nil {
		return oops.Code("IDENTITY_SET_ACTIVE_FAILED").
			With("operation", "update is_active").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("IDENTITY_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanIdentity scans one row into an Identity. Callers handle pgx.ErrNoRows.
func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var (
		idStr        string
		name         string
		email        string
		passwordHash string
		isActive     bool
		createdAt    time.Time
	)

	if err := row.Scan(&idStr, &name, &email, &passwordHash, &isActive, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("IDENTITY_SCAN_FAILED").
			With("operation", "scan identity").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("IDENTITY_INVALID_ID").
			With("operation", "parse identity id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Identity{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     isActive,
		CreatedAt:    createdAt,
	}, nil
}

// Compile-time interface check.
var _ auth.IdentityRepository = (*IdentityRepository)(nil)

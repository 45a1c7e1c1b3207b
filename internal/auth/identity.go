// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package auth

import (
	"context"
	"log/slog"
	"net/mail"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Display name constraints.
const (
	MinNameLength = 1
	MaxNameLength = 100
)

// Identity is a registered account record.
type Identity struct {
	ID           ulid.ULID
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// NewIdentity creates a validated Identity with a freshly minted ID.
// The password hash must already be derived; this constructor never
// sees a plaintext password.
func NewIdentity(name, email, passwordHash string) (*Identity, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_IDENTITY").Errorf("password hash cannot be empty")
	}

	return &Identity{
		ID:           ulid.Make(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}, nil
}

// LogValue renders the identity for diagnostics with email and
// password hash redacted.
func (i *Identity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", i.ID.String()),
		slog.String("name", i.Name),
		slog.String("email", "[redacted]"),
		slog.String("password_hash", "[redacted]"),
		slog.Bool("is_active", i.IsActive),
	)
}

// Public returns the identity view safe to hand to the rendering layer.
func (i *Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:        i.ID,
		Name:      i.Name,
		Email:     i.Email,
		IsActive:  i.IsActive,
		CreatedAt: i.CreatedAt,
	}
}

// PublicIdentity is an Identity without credential material.
type PublicIdentity struct {
	ID        ulid.ULID
	Name      string
	Email     string
	IsActive  bool
	CreatedAt time.Time
}

// ValidateName validates a display name.
func ValidateName(name string) error {
	if len(name) < MinNameLength {
		return oops.Code("AUTH_INVALID_NAME").Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("max", MaxNameLength).
			Errorf("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// ValidateEmail checks the email is a parseable address. Uniqueness is
// the store's concern, not this function's.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email is not a valid address")
	}
	return nil
}

// IdentityRepository manages identity persistence.
//
// Emails are stored case-sensitively and a unique index enforces the
// one-identity-per-email invariant. FindByEmail still returns a slice:
// if the invariant is ever violated the duplicates must surface to the
// caller rather than being silently collapsed to one row.
type IdentityRepository interface {
	// Create stores a new identity. Returns ErrEmailTaken when the
	// email uniqueness constraint would be violated.
	Create(ctx context.Context, identity *Identity) error

	// GetByID retrieves an identity by ID. Returns ErrNotFound when
	// no identity exists.
	GetByID(ctx context.Context, id ulid.ULID) (*Identity, error)

	// FindByEmail retrieves every identity whose stored email equals
	// the input exactly. An empty slice means no match.
	FindByEmail(ctx context.Context, email string) ([]*Identity, error)

	// SetActive toggles the active flag on an identity.
	SetActive(ctx context.Context, id ulid.ULID, active bool) error
}

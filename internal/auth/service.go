// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyPasswordHash is verified against when no identity matches the
// submitted email, so the unknown-email and wrong-password paths take
// comparable time. It is a fake hash that can never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing consistency, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service orchestrates credential checks against the identity store.
type Service struct {
	identities IdentityRepository
	hasher     PasswordHasher
	logger     *slog.Logger
}

// NewService creates an authentication Service.
func NewService(identities IdentityRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithLogger(identities, hasher, slog.Default())
}

// NewServiceWithLogger creates an authentication Service with an
// explicit logger.
func NewServiceWithLogger(identities IdentityRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if identities == nil {
		return nil, oops.Code("AUTH_BAD_DEPS").Errorf("identity repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_BAD_DEPS").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_BAD_DEPS").Errorf("logger is required")
	}
	return &Service{identities: identities, hasher: hasher, logger: logger}, nil
}

// Authenticate classifies one authentication attempt.
//
// Every identity stored under the submitted email is verified against the
// submitted password and only the survivors count:
//
//   - zero survivors: ErrInvalidCredentials. Unknown email and wrong
//     password are deliberately indistinguishable.
//   - one survivor: that identity is returned.
//   - more than one survivor: *DuplicateIdentitiesError. Duplicate emails
//     with independently valid passwords mean the uniqueness invariant is
//     broken; that is an operational alert, not a failed login.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	candidates, err := s.identities.FindByEmail(ctx, creds.Email)
	if err != nil {
		Authentications.WithLabelValues(OutcomeError).Inc()
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "find identities by email").
			Wrap(err)
	}

	if len(candidates) == 0 {
		// Burn a verification anyway so response time does not reveal
		// whether the email exists.
		_, _ = s.hasher.Verify(creds.Password, dummyPasswordHash) //nolint:errcheck // dummy hash, result discarded
		Authentications.WithLabelValues(OutcomeNoMatch).Inc()
		return nil, ErrInvalidCredentials
	}

	var survivors []*Identity
	for _, candidate := range candidates {
		ok, verifyErr := s.hasher.Verify(creds.Password, candidate.PasswordHash)
		if verifyErr != nil {
			// A malformed stored hash reads as a mismatch to the
			// caller; the detail stays in the log.
			s.logger.Warn("stored password hash failed to parse",
				slog.String("identity_id", candidate.ID.String()),
				slog.Any("error", verifyErr))
			continue
		}
		if ok {
			survivors = append(survivors, candidate)
		}
	}

	switch len(survivors) {
	case 0:
		Authentications.WithLabelValues(OutcomeNoMatch).Inc()
		return nil, ErrInvalidCredentials
	case 1:
		Authentications.WithLabelValues(OutcomeSuccess).Inc()
		return survivors[0], nil
	default:
		ids := make([]ulid.ULID, len(survivors))
		for i, survivor := range survivors {
			ids[i] = survivor.ID
		}
		dupErr := &DuplicateIdentitiesError{Email: creds.Email, IDs: ids}
		Authentications.WithLabelValues(OutcomeAmbiguous).Inc()
		s.logger.Error("duplicate identities validated for one email",
			slog.Int("count", len(ids)),
			slog.Any("identity_ids", idStrings(ids)))
		return nil, dupErr
	}
}

// GetIdentity retrieves an identity by ID for session validation.
// Returns ErrNotFound when the identity does not exist.
func (s *Service) GetIdentity(ctx context.Context, id ulid.ULID) (*Identity, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get identity by id").
			With("id", id.String()).
			Wrap(err)
	}
	return identity, nil
}

// Signup registers a new identity.
//
// The email pre-check gives a friendly duplicate error without burning an
// argon2 derivation; the store's unique index is what actually closes the
// check-then-insert race, and a constraint hit maps to the same
// ErrEmailTaken. Nothing is committed on failure.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*Identity, error) {
	existing, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "check email availability").
			Wrap(err)
	}
	if len(existing) > 0 {
		Signups.WithLabelValues("duplicate").Inc()
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	identity, err := NewIdentity(name, email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			Signups.WithLabelValues("duplicate").Inc()
			return nil, ErrEmailTaken
		}
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "insert identity").
			Wrap(err)
	}

	Signups.WithLabelValues("success").Inc()
	s.logger.Info("identity created", slog.Any("identity", identity))
	return identity, nil
}

func idStrings(ids []ulid.ULID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

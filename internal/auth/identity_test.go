// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package auth_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonguedex/tonguedex/internal/auth"
)

func TestNewIdentity(t *testing.T) {
	t.Run("creates active identity with minted ID", func(t *testing.T) {
		identity, err := auth.NewIdentity("Alice", "alice@example.com", "$argon2id$fake")
		require.NoError(t, err)

		assert.NotZero(t, identity.ID)
		assert.Equal(t, "Alice", identity.Name)
		assert.Equal(t, "alice@example.com", identity.Email)
		assert.True(t, identity.IsActive)
		assert.False(t, identity.CreatedAt.IsZero())
	})

	t.Run("IDs are unique across calls", func(t *testing.T) {
		a, err := auth.NewIdentity("Alice", "alice@example.com", "$argon2id$fake")
		require.NoError(t, err)
		b, err := auth.NewIdentity("Bob", "bob@example.com", "$argon2id$fake")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := auth.NewIdentity("", "alice@example.com", "$argon2id$fake")
		assert.Error(t, err)
	})

	t.Run("rejects overlong name", func(t *testing.T) {
		_, err := auth.NewIdentity(strings.Repeat("x", auth.MaxNameLength+1), "alice@example.com", "$argon2id$fake")
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		for _, email := range []string{"", "not-an-email", "Alice <alice@example.com>", "a@b@c"} {
			_, err := auth.NewIdentity("Alice", email, "$argon2id$fake")
			assert.Error(t, err, "email %q should be rejected", email)
		}
	})

	t.Run("rejects empty password hash", func(t *testing.T) {
		_, err := auth.NewIdentity("Alice", "alice@example.com", "")
		assert.Error(t, err)
	})
}

func TestIdentityLogValue(t *testing.T) {
	identity, err := auth.NewIdentity("Alice", "alice@example.com", "$argon2id$supersecret")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("created", "identity", identity)

	out := buf.String()
	assert.NotContains(t, out, "alice@example.com")
	assert.NotContains(t, out, "supersecret")
	assert.Contains(t, out, identity.ID.String())
	assert.Contains(t, out, "Alice")
}

func TestIdentityPublic(t *testing.T) {
	identity, err := auth.NewIdentity("Alice", "alice@example.com", "$argon2id$fake")
	require.NoError(t, err)

	pub := identity.Public()
	assert.Equal(t, identity.ID, pub.ID)
	assert.Equal(t, identity.Name, pub.Name)
	assert.Equal(t, identity.Email, pub.Email)
	assert.Equal(t, identity.IsActive, pub.IsActive)
}

func TestCredentialsLogValue(t *testing.T) {
	creds := auth.Credentials{
		Email:    "alice@example.com",
		Password: "hunter2",
		Remember: true,
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("login attempt", "credentials", creds)

	out := buf.String()
	assert.NotContains(t, out, "alice@example.com")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "remember=true")
}

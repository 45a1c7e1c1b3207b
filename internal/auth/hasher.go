// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, RFC 9106 low-memory profile.
const (
	argon2Iterations  = 2
	argon2MemoryKiB   = 19 * 1024 // 19 MiB
	argon2Parallelism = 1
	argon2SaltBytes   = 16
	argon2DigestBytes = 32
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher derives and verifies one-way password hashes.
type PasswordHasher interface {
	// Hash produces a PHC-encoded argon2id hash of the password.
	// A fresh salt is drawn per call, so two hashes of the same
	// password never compare equal.
	Hash(password string) (string, error)

	// Verify recomputes the digest with the parameters embedded in the
	// PHC string and compares in constant time. Returns (false, error)
	// for a malformed hash, (false, nil) for a plain mismatch.
	Verify(password, encoded string) (bool, error)
}

// Argon2idHasher implements PasswordHasher with argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates an Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces a PHC-encoded argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		// No entropy means no credential can be stored safely.
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	digest := argon2.IDKey([]byte(password), salt, argon2Iterations, argon2MemoryKiB, argon2Parallelism, argon2DigestBytes)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2MemoryKiB,
		argon2Iterations,
		argon2Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
	return encoded, nil
}

// argon2Params holds the values parsed out of a PHC string.
type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint32
	salt        []byte
	digest      []byte
}

// parsePHC decodes a $argon2id$... PHC string.
func parsePHC(encoded string) (*argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Errorf("malformed hash string")
	}
	if parts[1] != "argon2id" {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Errorf("unsupported argon2 version: %d", version)
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Wrap(err)
	}
	if p.iterations == 0 {
		// argon2.IDKey panics below one round, so reject before deriving.
		return nil, oops.Code("AUTH_MALFORMED_HASH").Errorf("iterations must be at least 1")
	}
	if p.parallelism == 0 || p.parallelism > 255 {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Errorf("parallelism %d out of range", p.parallelism)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Wrap(err)
	}
	if p.digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Wrap(err)
	}
	if len(p.digest) == 0 || len(p.digest) > 1<<10 {
		return nil, oops.Code("AUTH_MALFORMED_HASH").Errorf("digest length %d out of range", len(p.digest))
	}
	return p, nil
}

// Verify checks the password against a PHC-encoded hash.
func (h *Argon2idHasher) Verify(password, encoded string) (bool, error) {
	p, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), p.salt, p.iterations, p.memory, uint8(p.parallelism), uint32(len(p.digest)))

	return subtle.ConstantTimeCompare(computed, p.digest) == 1, nil
}

// Compile-time interface check.
var _ PasswordHasher = (*Argon2idHasher)(nil)

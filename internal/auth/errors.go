// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package auth

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when signup would violate email uniqueness.
var ErrEmailTaken = errors.New("an account with that email already exists")

// ErrInvalidCredentials collapses wrong-password and unknown-email into a
// single outcome so responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("wrong email or password")

// DuplicateIdentitiesError reports that more than one stored identity
// validated against the same submitted credentials. This is a data
// integrity violation the unique email index is meant to prevent, and it
// must be handled distinctly from an ordinary failed login.
type DuplicateIdentitiesError struct {
	Email string
	IDs   []ulid.ULID
}

func (e *DuplicateIdentitiesError) Error() string {
	return fmt.Sprintf("%d identities validated for the same credentials", len(e.IDs))
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

// Package auth provides credential hashing, identity persistence, and the
// authentication backend for tonguedex.
//
// # Domain Types
//
// Identity should be created through NewIdentity, which validates the name
// and email and mints a ULID. Direct struct initialization bypasses
// validation. Credentials is request-scoped only and both it and Identity
// implement slog.LogValuer so secrets never reach the logs verbatim.
//
// # Outcomes
//
// Authenticate has exactly three outcomes: a single identity, the
// collapsed ErrInvalidCredentials, or *DuplicateIdentitiesError when the
// email uniqueness invariant turns out to be broken. Callers must treat
// the third case as an operational error, not a user-facing login failure.
package auth

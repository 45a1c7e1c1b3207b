// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package session

import "errors"

// ErrNotFound is returned when no live session exists for a token.
// Expired sessions are reported the same way as absent ones.
var ErrNotFound = errors.New("session not found")

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package auth

import "log/slog"

// Credentials carries one authentication attempt. It is never persisted
// and lives only for the duration of the attempt.
type Credentials struct {
	Email    string
	Password string

	// Remember selects the fixed 30-day session policy instead of the
	// default sliding policy when the attempt succeeds.
	Remember bool
}

// LogValue keeps the plaintext password (and the email, which is
// account-identifying) out of any diagnostic output.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", "[redacted]"),
		slog.String("password", "[redacted]"),
		slog.Bool("remember", c.Remember),
	)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package auth

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for authentication metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeNoMatch   = "no_match"
	OutcomeAmbiguous = "ambiguous"
	OutcomeError     = "error"
)

// Authentications counts authentication attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Authentications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tonguedex_authentications_total",
		Help: "Total number of authentication attempts by outcome",
	},
	[]string{"outcome"},
)

// Signups counts signup attempts by outcome (success or duplicate).
var Signups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tonguedex_signups_total",
		Help: "Total number of signup attempts by outcome",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers auth metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Authentications)
	reg.MustRegister(Signups)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package session

import "github.com/prometheus/client_golang/prometheus"

// CacheLookups counts session cache lookups by outcome (hit or miss).
// Use RegisterMetrics to register this with a Prometheus registry.
var CacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tonguedex_session_cache_lookups_total",
		Help: "Total number of session cache lookups by outcome",
	},
	[]string{"outcome"},
)

// SweptSessions counts durable-store sessions removed by the sweeper.
var SweptSessions = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tonguedex_sessions_swept_total",
		Help: "Total number of expired sessions removed by the sweeper",
	},
)

// RegisterMetrics registers session metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CacheLookups)
	reg.MustRegister(SweptSessions)
}

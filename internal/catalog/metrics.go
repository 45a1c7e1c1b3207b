// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package catalog

import "github.com/prometheus/client_golang/prometheus"

// Searches counts catalog searches by kind (browse or term).
// Use RegisterMetrics to register this with a Prometheus registry.
var Searches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tonguedex_catalog_searches_total",
		Help: "Total number of catalog searches by kind",
	},
	[]string{"kind"},
)

// RegisterMetrics registers catalog metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Searches)
}

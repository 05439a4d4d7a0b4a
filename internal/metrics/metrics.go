// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package metrics exposes Prometheus counters/gauges for completed
// tests over HTTP, opt-in via -metrics-listen.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BytesTransferred tracks cumulative bytes moved per role/direction.
	BytesTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowbench_bytes_transferred_total",
			Help: "total bytes sent or received across completed streams",
		},
		[]string{"role", "direction"})

	// TestsCompleted tracks finished tests by outcome.
	TestsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowbench_tests_completed_total",
			Help: "total tests that reached DISPLAY_RESULTS or failed",
		},
		[]string{"role", "outcome"})

	// StreamJitterSeconds observes the final jitter estimate for
	// datagram streams.
	StreamJitterSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowbench_stream_jitter_seconds",
			Help:    "final RFC1889 jitter estimate per datagram stream",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		})

	// ActiveStreams reports streams currently in RUNNING state.
	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flowbench_active_streams",
			Help: "number of streams currently running",
		})
)

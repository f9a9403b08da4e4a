package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_upstream_calls_total",
			Help: "Upstream client calls by client name and outcome",
		},
		[]string{"client", "status"},
	)

	snapshotConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregator_snapshot_confidence",
			Help:    "Confidence score of computed snapshots",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	snapshotCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_cache_hits_total",
			Help: "Snapshot cache hits",
		},
	)

	snapshotCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_cache_misses_total",
			Help: "Snapshot cache misses, including unreadable entries",
		},
	)

	coalescedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aggregator_coalesced_requests_total",
			Help: "Snapshot requests served by attaching to an in-flight aggregation",
		},
	)

	fanoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregator_fanout_duration_seconds",
			Help:    "Wall time of a full upstream fan-out",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
	)
)

// Package metrics exposes the pipeline's Prometheus collectors. Collectors
// register on the default registry; exposition (HTTP handler, push) is the
// consumer's concern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RouterDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "juricore_router_decisions_total",
			Help: "Total number of router classifications by decision",
		},
		[]string{"decision"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juricore_cache_hits_total",
			Help: "Total number of query cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juricore_cache_misses_total",
			Help: "Total number of query cache misses",
		},
	)

	CacheStores = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juricore_cache_stores_total",
			Help: "Total number of query cache write-backs",
		},
	)

	LockWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juricore_memory_lock_waits_total",
			Help: "Total number of contended memory lock acquisitions",
		},
	)

	LockTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juricore_memory_lock_timeouts_total",
			Help: "Total number of memory lock acquisitions that timed out",
		},
	)

	LockWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "juricore_memory_lock_wait_seconds",
			Help:    "Memory lock wait duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	MemorySaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "juricore_memory_saves_total",
			Help: "Total number of memory save attempts by outcome",
		},
		[]string{"outcome"},
	)

	BackendLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "juricore_backend_latency_seconds",
			Help:    "Reasoning backend call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	BackendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juricore_backend_errors_total",
			Help: "Total number of reasoning backend failures",
		},
	)

	LoopIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "juricore_loop_iterations",
			Help:    "Reasoning loop iterations per query",
			Buckets: prometheus.LinearBuckets(1, 1, 16),
		},
	)

	ToolErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "juricore_tool_errors_total",
			Help: "Total number of tool execution failures by tool",
		},
		[]string{"tool"},
	)

	FatalAborts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "juricore_fatal_aborts_total",
			Help: "Total number of streams terminated by a fatal error event",
		},
	)

	ActiveQueries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "juricore_active_queries",
			Help: "Number of queries currently being resolved",
		},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StaticServingOutcomes counts the decisions taken by static file stages
	StaticServingOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "static_pipeline_static_serving_total",
		Help: "The number of requests inspected by static file stages, by outcome",
	}, []string{"url_root", "outcome"})

	// StaticServingFileSize observes the size of files served by static stages
	StaticServingFileSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "static_pipeline_static_serving_file_size_bytes",
		Help:    "The size in bytes for each file that has been served",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	// ServingTime records the time spent by static stages answering a request
	ServingTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "static_pipeline_serving_time_seconds",
		Help:    "The time (in seconds) static stages take to serve a file",
		Buckets: prometheus.DefBuckets,
	})

	// VFSOperations counts VFS operations (open, lstat)
	VFSOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "static_pipeline_vfs_operations_total",
		Help: "The number of VFS operations",
	}, []string{"vfs_name", "operation", "success"})

	// ChainOutcomes counts how request chains ended: terminated by a stage or completed
	ChainOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "static_pipeline_chain_outcomes_total",
		Help: "The number of request chains by outcome",
	}, []string{"outcome"})

	// RateLimitSourceIPBlockedCount is the number of requests that have been blocked by the
	// source IP rate limiter
	RateLimitSourceIPBlockedCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "static_pipeline_rate_limit_source_ip_blocked_count",
			Help: "The number of requests that have been blocked by the IP rate limiter",
		},
		[]string{"enforced"},
	)

	// RateLimitSourceIPCacheRequests is the number of cache hits/misses
	RateLimitSourceIPCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "static_pipeline_rate_limit_source_ip_cache_requests",
			Help: "The number of source_ip cache hits/misses in the rate limiter",
		},
		[]string{"op", "cache"},
	)

	// RateLimitSourceIPCachedEntries is the number of entries in the cache
	RateLimitSourceIPCachedEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "static_pipeline_rate_limit_source_ip_cached_entries",
			Help: "The number of entries in the cache",
		},
		[]string{"op"},
	)

	// LimitListenerMaxConns is the max number of concurrent connections allowed
	LimitListenerMaxConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "static_pipeline_limit_listener_max_conns",
		Help: "The maximum number of concurrent connections allowed by the listener",
	})

	// LimitListenerConcurrentConns is the number of connections being served
	LimitListenerConcurrentConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "static_pipeline_limit_listener_concurrent_conns",
		Help: "The number of concurrent connections currently being served",
	})

	// LimitListenerWaitingConns is the number of connections waiting for a free slot
	LimitListenerWaitingConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "static_pipeline_limit_listener_waiting_conns",
		Help: "The number of connections waiting to be served",
	})
)

// MustRegister collectors with the Prometheus client
func MustRegister() {
	prometheus.MustRegister(
		StaticServingOutcomes,
		StaticServingFileSize,
		ServingTime,
		VFSOperations,
		ChainOutcomes,
		RateLimitSourceIPBlockedCount,
		RateLimitSourceIPCacheRequests,
		RateLimitSourceIPCachedEntries,
		LimitListenerMaxConns,
		LimitListenerConcurrentConns,
		LimitListenerWaitingConns,
	)
}

// Package ratelimiter throttles requests per source IP address with one
// token bucket per address.
package ratelimiter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"gitlab.com/gitlab-org/static-pipeline/internal/lru"
	"gitlab.com/gitlab-org/static-pipeline/metrics"
)

const (
	// DefaultSourceIPLimitPerSecond is the rate at which the bucket of a
	// source IP refills.
	DefaultSourceIPLimitPerSecond = 20.0
	// DefaultSourceIPBurstSize is the capacity of the bucket of a source IP:
	// the 101st request within a second is blocked.
	DefaultSourceIPBurstSize = 100

	bucketsCacheSize = 5000
	bucketsCacheTTL  = time.Minute
)

// Option configures a RateLimiter
type Option func(*RateLimiter)

// RateLimiter keeps the buckets of recently seen source IPs in an LRU cache.
type RateLimiter struct {
	now     func() time.Time
	limit   rate.Limit
	burst   int
	enforce bool
	blocked *prometheus.GaugeVec
	buckets *lru.Cache[*rate.Limiter]
}

// New creates a RateLimiter using the default limits unless opts change them.
func New(opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		now:     time.Now,
		limit:   rate.Limit(DefaultSourceIPLimitPerSecond),
		burst:   DefaultSourceIPBurstSize,
		blocked: metrics.RateLimitSourceIPBlockedCount,
		buckets: lru.New[*rate.Limiter]("source_ip", bucketsCacheSize, bucketsCacheTTL, lru.Metrics{
			Entries:  metrics.RateLimitSourceIPCachedEntries,
			Requests: metrics.RateLimitSourceIPCacheRequests,
		}),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// WithNow sets the clock used to take tokens. Tests use it to freeze time.
func WithNow(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// WithSourceIPLimitPerSecond sets the refill rate of every bucket.
func WithSourceIPLimitPerSecond(limit float64) Option {
	return func(rl *RateLimiter) {
		rl.limit = rate.Limit(limit)
	}
}

// WithSourceIPBurstSize sets the capacity of every bucket.
func WithSourceIPBurstSize(burst int) Option {
	return func(rl *RateLimiter) {
		rl.burst = burst
	}
}

// WithEnforce makes the stage answer 429 to blocked requests. Without it
// blocked requests are only logged and counted.
func WithEnforce(enforce bool) Option {
	return func(rl *RateLimiter) {
		rl.enforce = enforce
	}
}

func (rl *RateLimiter) bucket(sourceIP string) *rate.Limiter {
	b, _ := rl.buckets.Get(sourceIP, func() (*rate.Limiter, error) {
		return rate.NewLimiter(rl.limit, rl.burst), nil
	})

	return b
}

// SourceIPAllowed takes one token from the bucket of sourceIP and reports
// whether there was one to take.
func (rl *RateLimiter) SourceIPAllowed(sourceIP string) bool {
	return rl.bucket(sourceIP).AllowN(rl.now(), 1)
}

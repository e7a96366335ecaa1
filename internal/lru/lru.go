// Package lru is a size-bounded cache whose entries expire after a fixed
// time to live. Hits, misses and the number of live entries are reported to
// prometheus under the cache name.
package lru

import (
	"time"

	"github.com/karlseguin/ccache/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// frequently read entries are moved to the front once every promoteAfter reads
	promoteAfter = 64
	// 1/pruneDivisor of the entries is dropped when the cache is full
	pruneDivisor = 16
)

// Metrics are the collectors a Cache reports to. Entries is labelled by
// cache name, Requests by cache name and result (hit, miss, error).
type Metrics struct {
	Entries  *prometheus.GaugeVec
	Requests *prometheus.CounterVec
}

// Cache maps string keys to values of type V.
type Cache[V any] struct {
	items *ccache.Cache
	ttl   time.Duration

	hits    prometheus.Counter
	misses  prometheus.Counter
	errors  prometheus.Counter
	entries prometheus.Gauge
}

// New creates a cache holding at most size entries, each for ttl.
func New[V any](name string, size int64, ttl time.Duration, m Metrics) *Cache[V] {
	entries := m.Entries.WithLabelValues(name)

	items := ccache.New(ccache.Configure().
		MaxSize(size).
		ItemsToPrune(uint32(size/pruneDivisor) + 1).
		GetsPerPromote(promoteAfter).
		OnDelete(func(*ccache.Item) { entries.Dec() }))

	return &Cache[V]{
		items:   items,
		ttl:     ttl,
		hits:    m.Requests.WithLabelValues(name, "hit"),
		misses:  m.Requests.WithLabelValues(name, "miss"),
		errors:  m.Requests.WithLabelValues(name, "error"),
		entries: entries,
	}
}

// Get returns the live value stored under key. On a miss it stores and
// returns the result of create. Errors from create are returned and not
// cached.
func (c *Cache[V]) Get(key string, create func() (V, error)) (V, error) {
	if item := c.items.Get(key); item != nil && !item.Expired() {
		c.hits.Inc()
		return item.Value().(V), nil
	}

	v, err := create()
	if err != nil {
		c.errors.Inc()
		return v, err
	}

	c.misses.Inc()
	c.entries.Inc()
	c.items.Set(key, v, c.ttl)

	return v, nil
}

// Stop ends the background worker of the cache.
func (c *Cache[V]) Stop() {
	c.items.Stop()
}

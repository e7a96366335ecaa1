package lru

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() Metrics {
	return Metrics{
		Entries:  prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "test_cached_entries"}, []string{"op"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_requests"}, []string{"op", "cache"}),
	}
}

func counter(create func() int) func() (int, error) {
	return func() (int, error) {
		return create(), nil
	}
}

func TestGet(t *testing.T) {
	m := newTestMetrics()
	c := New[int]("test", 100, time.Minute, m)
	defer c.Stop()

	created := 0
	create := counter(func() int {
		created++
		return created
	})

	tests := []struct {
		key      string
		expected int
	}{
		{key: "10.0.0.1", expected: 1},
		{key: "10.0.0.1", expected: 1},
		{key: "10.0.0.2", expected: 2},
		{key: "10.0.0.1", expected: 1},
	}

	for _, tt := range tests {
		v, err := c.Get(tt.key, create)
		require.NoError(t, err)
		require.Equal(t, tt.expected, v, tt.key)
	}

	require.Equal(t, 2, created)
	require.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("test", "hit")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("test", "miss")))
	require.Equal(t, float64(2), testutil.ToFloat64(m.Entries.WithLabelValues("test")))
}

func TestGetError(t *testing.T) {
	m := newTestMetrics()
	c := New[string]("test", 100, time.Minute, m)
	defer c.Stop()

	errCreate := errors.New("create failed")

	_, err := c.Get("key", func() (string, error) { return "", errCreate })
	require.ErrorIs(t, err, errCreate)
	require.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("test", "error")))

	v, err := c.Get("key", func() (string, error) { return "value", nil })
	require.NoError(t, err)
	require.Equal(t, "value", v, "errors are not cached")
}

func TestGetExpired(t *testing.T) {
	c := New[int]("test", 100, -time.Second, newTestMetrics())
	defer c.Stop()

	created := 0
	create := counter(func() int {
		created++
		return created
	})

	_, err := c.Get("key", create)
	require.NoError(t, err)

	v, err := c.Get("key", create)
	require.NoError(t, err)
	require.Equal(t, 2, v, "expired entries are created again")
}

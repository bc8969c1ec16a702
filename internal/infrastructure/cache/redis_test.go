package cache

import (
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *RedisClient {
	r := &RedisClient{
		client:  redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
		config:  DefaultConfig(),
		metrics: &CacheMetrics{},
	}
	r.seedDefaultTTLs()
	return r
}

func TestTrackEventCounters(t *testing.T) {
	c := newTestClient()

	c.TrackEvent(true, "habit")
	c.TrackEvent(true, "habit")
	c.TrackEvent(false, "statistics")

	m := c.ExportMetrics()
	assert.Equal(t, 2.0, m["cache_hits"])
	assert.Equal(t, 1.0, m["cache_misses"])
	assert.InDelta(t, 0.66, m["cache_hit_rate"], 0.01)
}

func TestTTLFor(t *testing.T) {
	c := newTestClient()

	assert.Equal(t, time.Hour, c.TTLFor("habit"))
	assert.Equal(t, 10*time.Minute, c.TTLFor("challenge_list"))
	assert.Equal(t, 5*time.Minute, c.TTLFor("statistics"))
	assert.Equal(t, c.config.DefaultTTL, c.TTLFor("unknown"))
}

func TestCollectorEmitsAllSeries(t *testing.T) {
	c := newTestClient()
	c.TrackEvent(true, "habit")

	collector := NewCollector(c)

	descs := make(chan *prometheus.Desc, 16)
	collector.Describe(descs)
	close(descs)
	require.Len(t, descs, 7)

	metrics := make(chan prometheus.Metric, 16)
	collector.Collect(metrics)
	close(metrics)
	assert.Len(t, metrics, 7)
}

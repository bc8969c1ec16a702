package cache

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes the Redis client's hit/miss counters and pool stats to
// prometheus. Register it once at startup next to the HTTP metrics.
type Collector struct {
	client *RedisClient
	descs  map[string]*prometheus.Desc
	up     *prometheus.Desc
}

func NewCollector(client *RedisClient) *Collector {
	help := map[string]string{
		"cache_hits":       "Total cache hits since startup",
		"cache_misses":     "Total cache misses since startup",
		"cache_hit_rate":   "Cache hit ratio (0..1)",
		"pool_total_conns": "Total connections in the Redis pool",
		"pool_idle_conns":  "Idle connections in the Redis pool",
		"pool_stale_conns": "Stale connections removed from the Redis pool",
	}

	descs := make(map[string]*prometheus.Desc, len(help))
	for name, h := range help {
		descs[name] = prometheus.NewDesc("redis_"+name, h, nil, nil)
	}

	return &Collector{
		client: client,
		descs:  descs,
		up:     prometheus.NewDesc("redis_up", "Whether the Redis health check is passing", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range c.descs {
		ch <- desc
	}
	ch <- c.up
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, value := range c.client.ExportMetrics() {
		desc, ok := c.descs[name]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, value)
	}

	up := 0.0
	if c.client.IsHealthy() {
		up = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, up)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"agedist/internal/platform/config"
)

// poolMetrics are the Prometheus series fed from go-redis pool statistics.
type poolMetrics struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	timeouts   prometheus.Counter
	staleConns prometheus.Counter
	totalConns prometheus.Gauge
	idleConns  prometheus.Gauge
}

func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	f := promauto.With(reg)
	return &poolMetrics{
		hits: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_redis_pool_hits_total",
			Help: "Number of times a connection was found in the pool",
		}),
		misses: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_redis_pool_misses_total",
			Help: "Number of times a connection was not found in the pool",
		}),
		timeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_redis_pool_timeouts_total",
			Help: "Number of times a connection was not obtained due to timeout",
		}),
		staleConns: f.NewCounter(prometheus.CounterOpts{
			Name: "agedist_redis_pool_stale_conns_total",
			Help: "Number of stale connections removed from the pool",
		}),
		totalConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "agedist_redis_pool_total_conns",
			Help: "Number of total connections in the pool",
		}),
		idleConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "agedist_redis_pool_idle_conns",
			Help: "Number of idle connections in the pool",
		}),
	}
}

var defaultPoolMetrics = newPoolMetrics(prometheus.DefaultRegisterer)

// poolStatsRecorder turns cumulative pool statistics into counter increments.
type poolStatsRecorder struct {
	m    *poolMetrics
	last *redis.PoolStats
}

func (r *poolStatsRecorder) record(stats *redis.PoolStats) {
	r.m.totalConns.Set(float64(stats.TotalConns))
	r.m.idleConns.Set(float64(stats.IdleConns))

	var last redis.PoolStats
	if r.last != nil {
		last = *r.last
	}
	addDelta(r.m.hits, stats.Hits, last.Hits)
	addDelta(r.m.misses, stats.Misses, last.Misses)
	addDelta(r.m.timeouts, stats.Timeouts, last.Timeouts)
	addDelta(r.m.staleConns, stats.StaleConns, last.StaleConns)

	snapshot := *stats
	r.last = &snapshot
}

// addDelta adds the growth since the previous sample. A shrinking value
// (pool replaced) adds nothing; counters never go backwards.
func addDelta(c prometheus.Counter, now, prev uint32) {
	if now > prev {
		c.Add(float64(now - prev))
	}
}

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
	stats poolStatsRecorder
}

// New creates a new Redis client from the provided configuration.
// Returns nil if the URL is empty (Redis not configured).
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client, stats: poolStatsRecorder{m: defaultPoolMetrics}}, nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}

// RunPoolStats records pool statistics every interval until ctx is done.
func (c *Client) RunPoolStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}

// RecordPoolStats updates Prometheus metrics with current pool statistics.
func (c *Client) RecordPoolStats() {
	c.stats.record(c.PoolStats())
}

package redis

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"agedist/internal/platform/config"
)

func newRecorder() (*poolStatsRecorder, *poolMetrics) {
	m := newPoolMetrics(prometheus.NewRegistry())
	return &poolStatsRecorder{m: m}, m
}

func TestRecordPoolStats_FirstSampleRecordsTotals(t *testing.T) {
	r, m := newRecorder()

	r.record(&redis.PoolStats{Hits: 7, Misses: 2, Timeouts: 1, StaleConns: 3, TotalConns: 5, IdleConns: 4})

	assert.Equal(t, 7.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timeouts))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.staleConns))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.totalConns))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.idleConns))
}

func TestRecordPoolStats_LaterSamplesAddDeltas(t *testing.T) {
	r, m := newRecorder()

	r.record(&redis.PoolStats{Hits: 10, Misses: 4, TotalConns: 3, IdleConns: 3})
	r.record(&redis.PoolStats{Hits: 15, Misses: 4, Timeouts: 2, TotalConns: 6, IdleConns: 1})

	assert.Equal(t, 15.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.misses), "unchanged stats add nothing")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.timeouts))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.totalConns), "gauges follow the latest sample")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.idleConns))
}

func TestRecordPoolStats_ShrinkingStatsNeverDecrement(t *testing.T) {
	r, m := newRecorder()

	r.record(&redis.PoolStats{Hits: 20})
	r.record(&redis.PoolStats{Hits: 5})
	r.record(&redis.PoolStats{Hits: 8})

	assert.Equal(t, 23.0, testutil.ToFloat64(m.hits))
}

func TestRecordPoolStats_KeepsOwnSnapshot(t *testing.T) {
	r, m := newRecorder()
	stats := &redis.PoolStats{Hits: 4}

	r.record(stats)
	stats.Hits = 9 // caller reuses its struct
	r.record(stats)

	assert.Equal(t, 9.0, testutil.ToFloat64(m.hits))
}

func TestNew_EmptyURLIsNotConfigured(t *testing.T) {
	c, err := New(config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(config.RedisConfig{URL: "mysql://nope"})
	assert.Error(t, err)
}

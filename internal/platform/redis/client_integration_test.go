//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agedist/internal/platform/config"
	"agedist/pkg/testutil/containers"
)

func TestClient_PoolStatsAgainstRedis(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)

	c, err := New(config.RedisConfig{URL: rc.URL, DialTimeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	m := newPoolMetrics(prometheus.NewRegistry())
	c.stats = poolStatsRecorder{m: m}

	ctx := context.Background()
	require.NoError(t, c.Health(ctx))
	c.RecordPoolStats()
	first := testutil.ToFloat64(m.hits) + testutil.ToFloat64(m.misses)

	for range 5 {
		require.NoError(t, c.Ping(ctx).Err())
	}
	c.RecordPoolStats()

	assert.Greater(t, testutil.ToFloat64(m.hits)+testutil.ToFloat64(m.misses), first)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.totalConns), 1.0)
}

func TestClient_RunPoolStatsStopsWithContext(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)

	c, err := New(config.RedisConfig{URL: rc.URL, DialTimeout: 2 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	c.stats = poolStatsRecorder{m: newPoolMetrics(prometheus.NewRegistry())}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.RunPoolStats(ctx, 10*time.Millisecond) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunPoolStats did not return after cancel")
	}
}

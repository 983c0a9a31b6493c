package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

// Redis round-trip tests run only against a real server, e.g.
// TEST_REDIS_ADDR=localhost:6379 go test ./internal/store/...
func redisForTest(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	r := NewRedis(addr, time.Minute)
	require.NoError(t, r.Ping(context.Background()))
	return r
}

func TestRedisRankingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := redisForTest(t)

	snap := testSnapshot(time.Now().UTC().Truncate(time.Second), time.Hour)
	require.NoError(t, r.SetRankings(ctx, snap))

	got, ok, err := r.Rankings(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.GeneratedAt.Equal(snap.GeneratedAt))
	assert.Len(t, got.Districts, len(snap.Districts))
}

func TestRedisForecastRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := redisForTest(t)

	fc := weather.DistrictForecast{
		DistrictID:  "14",
		Samples:     []weather.Sample{{Date: time.Now().UTC().Truncate(24 * time.Hour), TemperatureC: 31.0, PM25: 80.0}},
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, r.SetDistrictForecast(ctx, fc.DistrictID, fc))

	got, ok, err := r.DistrictForecast(ctx, "14")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Samples, 1)
	assert.Equal(t, 31.0, got.Samples[0].TemperatureC)

	meta, ok, err := r.Metadata(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, meta.DistrictsCached, 1)
}

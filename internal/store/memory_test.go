package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

func testSnapshot(generatedAt time.Time, ttl time.Duration) weather.RankingSnapshot {
	return weather.RankingSnapshot{
		Districts: []weather.RankedDistrict{
			{Rank: 1, AvgTemperatureC: 24.0, AvgPM25: 12.0, GeneratedAt: generatedAt},
		},
		GeneratedAt: generatedAt,
		ExpiresAt:   generatedAt.Add(ttl),
	}
}

func TestMemoryRankingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	_, ok := m.Rankings(ctx)
	assert.False(t, ok, "empty store reads as absent, not as an error")

	snap := testSnapshot(time.Now().UTC(), time.Hour)
	m.SetRankings(ctx, snap)

	got, ok := m.Rankings(ctx)
	require.True(t, ok)
	assert.True(t, got.GeneratedAt.Equal(snap.GeneratedAt))
	assert.Len(t, got.Districts, 1)
}

func TestMemoryHonorsSnapshotExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	// Already past its own ExpiresAt: the store-local TTL evicts it even
	// though the orchestrator's staleness check never saw it.
	m.SetRankings(ctx, testSnapshot(time.Now().UTC().Add(-2*time.Hour), time.Hour))

	_, ok := m.Rankings(ctx)
	assert.False(t, ok)
}

func TestMemoryForecastRoundTripAndAge(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10 * time.Minute)

	_, ok := m.DistrictForecast(ctx, "14")
	assert.False(t, ok)

	fresh := weather.DistrictForecast{DistrictID: "14", GeneratedAt: time.Now().UTC()}
	m.SetDistrictForecast(ctx, "14", fresh)
	_, ok = m.DistrictForecast(ctx, "14")
	assert.True(t, ok)

	old := weather.DistrictForecast{DistrictID: "62", GeneratedAt: time.Now().UTC().Add(-time.Hour)}
	m.SetDistrictForecast(ctx, "62", old)
	_, ok = m.DistrictForecast(ctx, "62")
	assert.False(t, ok, "forecasts beyond the max age read as absent")
}

func TestMemoryMetadataIsDerived(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	_, ok := m.Metadata(ctx)
	assert.False(t, ok, "nothing ever written")

	snap := testSnapshot(time.Now().UTC(), time.Hour)
	m.SetRankings(ctx, snap)
	m.SetDistrictForecast(ctx, "14", weather.DistrictForecast{DistrictID: "14", GeneratedAt: time.Now().UTC()})
	m.SetDistrictForecast(ctx, "62", weather.DistrictForecast{DistrictID: "62", GeneratedAt: time.Now().UTC()})

	meta, ok := m.Metadata(ctx)
	require.True(t, ok)
	assert.True(t, meta.Healthy)
	assert.Equal(t, 2, meta.DistrictsCached)
	assert.True(t, meta.LastUpdated.Equal(snap.GeneratedAt))
}

package store

import (
	"context"
	"sync"
	"time"

	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

// Memory is a concurrency-safe in-process cache. It serves as the local
// fallback when the durable store is unavailable, and applies its own
// best-effort expiry (the snapshot's ExpiresAt, and a max age for forecasts)
// independent of the orchestrator's staleness threshold.
type Memory struct {
	mu sync.RWMutex

	rankings    *weather.RankingSnapshot
	forecasts   map[string]weather.DistrictForecast
	forecastAge time.Duration // 0 = unlimited
}

// NewMemory creates a Memory store. forecastMaxAge bounds how long a cached
// district forecast is served; zero disables the bound.
func NewMemory(forecastMaxAge time.Duration) *Memory {
	return &Memory{
		forecasts:   make(map[string]weather.DistrictForecast),
		forecastAge: forecastMaxAge,
	}
}

func (m *Memory) Rankings(ctx context.Context) (weather.RankingSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.rankings == nil {
		return weather.RankingSnapshot{}, false
	}
	if !m.rankings.ExpiresAt.IsZero() && time.Now().After(m.rankings.ExpiresAt) {
		return weather.RankingSnapshot{}, false
	}
	return *m.rankings, true
}

func (m *Memory) SetRankings(ctx context.Context, snap weather.RankingSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankings = &snap
}

func (m *Memory) DistrictForecast(ctx context.Context, districtID string) (weather.DistrictForecast, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fc, ok := m.forecasts[districtID]
	if !ok {
		return weather.DistrictForecast{}, false
	}
	if m.forecastAge > 0 && time.Since(fc.GeneratedAt) > m.forecastAge {
		return weather.DistrictForecast{}, false
	}
	return fc, true
}

func (m *Memory) SetDistrictForecast(ctx context.Context, districtID string, fc weather.DistrictForecast) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecasts[districtID] = fc
}

func (m *Memory) Metadata(ctx context.Context) (weather.CacheMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.rankings == nil {
		return weather.CacheMetadata{}, false
	}
	return weather.CacheMetadata{
		LastUpdated:     m.rankings.GeneratedAt,
		Healthy:         len(m.rankings.Districts) > 0,
		DistrictsCached: len(m.forecasts),
	}, true
}

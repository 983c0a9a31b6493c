package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

const (
	rankingsKey    = "advisor:rankings"
	forecastPrefix = "advisor:forecast:"
)

// Redis is the durable shared cache used across service instances. Methods
// report operational errors so the failover wrapper can latch onto the local
// fallback; a missing key is ok=false with a nil error.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis store writing values with the given TTL.
func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies connectivity; used at startup for log visibility only.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Rankings(ctx context.Context) (weather.RankingSnapshot, bool, error) {
	var snap weather.RankingSnapshot
	ok, err := r.getJSON(ctx, rankingsKey, &snap)
	return snap, ok, err
}

func (r *Redis) SetRankings(ctx context.Context, snap weather.RankingSnapshot) error {
	return r.setJSON(ctx, rankingsKey, snap)
}

func (r *Redis) DistrictForecast(ctx context.Context, districtID string) (weather.DistrictForecast, bool, error) {
	var fc weather.DistrictForecast
	ok, err := r.getJSON(ctx, forecastPrefix+districtID, &fc)
	return fc, ok, err
}

func (r *Redis) SetDistrictForecast(ctx context.Context, districtID string, fc weather.DistrictForecast) error {
	return r.setJSON(ctx, forecastPrefix+districtID, fc)
}

// Metadata recomputes the health summary from whatever is currently cached.
func (r *Redis) Metadata(ctx context.Context) (weather.CacheMetadata, bool, error) {
	snap, ok, err := r.Rankings(ctx)
	if err != nil || !ok {
		return weather.CacheMetadata{}, false, err
	}

	var cached int
	iter := r.client.Scan(ctx, 0, forecastPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		cached++
	}
	if err := iter.Err(); err != nil {
		return weather.CacheMetadata{}, false, fmt.Errorf("scan forecasts: %w", err)
	}

	return weather.CacheMetadata{
		LastUpdated:     snap.GeneratedAt,
		Healthy:         len(snap.Districts) > 0,
		DistrictsCached: cached,
	}, true, nil
}

func (r *Redis) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A corrupt value is treated as a miss, not a store failure; the next
		// reload overwrites it.
		log.Printf("store: discarding corrupt cache value at %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (r *Redis) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

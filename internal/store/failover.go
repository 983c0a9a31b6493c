package store

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/nhasan-dev/district-travel-advisor/internal/metrics"
	"github.com/nhasan-dev/district-travel-advisor/internal/weather"
)

// Failover serves from a durable Redis store and degrades, one-way, to the
// local in-memory store on the first observed Redis failure. Once degraded it
// stays degraded for the life of the process; recovery requires a restart.
// Writes are mirrored to the local store while Redis is healthy, so the
// fallback is warm at the moment of the switch.
type Failover struct {
	durable  *Redis
	local    *Memory
	degraded atomic.Bool
}

// NewFailover wraps a durable store with a local fallback.
func NewFailover(durable *Redis, local *Memory) *Failover {
	return &Failover{durable: durable, local: local}
}

// Degraded reports whether the durable store has been abandoned.
func (f *Failover) Degraded() bool {
	return f.degraded.Load()
}

func (f *Failover) degrade(op string, err error) {
	if f.degraded.CompareAndSwap(false, true) {
		metrics.CacheFailoversTotal.Inc()
		log.Printf("store: durable cache failed during %s, switching to local fallback for the rest of the process: %v", op, err)
	}
}

func (f *Failover) Rankings(ctx context.Context) (weather.RankingSnapshot, bool) {
	if !f.degraded.Load() {
		snap, ok, err := f.durable.Rankings(ctx)
		if err == nil {
			return snap, ok
		}
		f.degrade("rankings read", err)
	}
	return f.local.Rankings(ctx)
}

func (f *Failover) SetRankings(ctx context.Context, snap weather.RankingSnapshot) {
	if !f.degraded.Load() {
		if err := f.durable.SetRankings(ctx, snap); err != nil {
			f.degrade("rankings write", err)
		}
	}
	f.local.SetRankings(ctx, snap)
}

func (f *Failover) DistrictForecast(ctx context.Context, districtID string) (weather.DistrictForecast, bool) {
	if !f.degraded.Load() {
		fc, ok, err := f.durable.DistrictForecast(ctx, districtID)
		if err == nil {
			return fc, ok
		}
		f.degrade("forecast read", err)
	}
	return f.local.DistrictForecast(ctx, districtID)
}

func (f *Failover) SetDistrictForecast(ctx context.Context, districtID string, fc weather.DistrictForecast) {
	if !f.degraded.Load() {
		if err := f.durable.SetDistrictForecast(ctx, districtID, fc); err != nil {
			f.degrade("forecast write", err)
		}
	}
	f.local.SetDistrictForecast(ctx, districtID, fc)
}

func (f *Failover) Metadata(ctx context.Context) (weather.CacheMetadata, bool) {
	if !f.degraded.Load() {
		meta, ok, err := f.durable.Metadata(ctx)
		if err == nil {
			return meta, ok
		}
		f.degrade("metadata read", err)
	}
	return f.local.Metadata(ctx)
}

package weather

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/nhasan-dev/district-travel-advisor/internal/district"
	"github.com/nhasan-dev/district-travel-advisor/internal/metrics"
)

// ServiceConfig carries the orchestrator's tunables.
type ServiceConfig struct {
	// StalenessThreshold is the maximum age of a cached ranking snapshot
	// before a read forces a synchronous reload.
	StalenessThreshold time.Duration

	// SnapshotTTL sets ExpiresAt on new snapshots; the local store enforces
	// it independently of StalenessThreshold.
	SnapshotTTL time.Duration

	// ForecastDays is the upstream forecast window.
	ForecastDays int

	// TargetHour is the hour-of-day (local time) each daily sample is taken at.
	TargetHour int

	// Location is the upstream timezone. Open-Meteo returns wall-clock
	// timestamps in the requested timezone, so the current forecast day must
	// be derived in the same zone or the window shifts by one day around
	// midnight.
	Location *time.Location

	// BackgroundReloadTimeout bounds best-effort reloads triggered off the
	// forecast read path.
	BackgroundReloadTimeout time.Duration
}

// Service is the cache-aside orchestrator: the single place that decides
// "serve from cache" vs "reload now", and that performs the reload.
//
// The on-demand reload path deliberately has no single-flight guard;
// concurrent stale reads each run their own reload and the full-replace
// snapshot write makes the race harmless (last writer wins). Overlap
// prevention for scheduled refreshes lives in the scheduler package.
type Service struct {
	store     Store
	client    Client
	directory *district.Directory
	cfg       ServiceConfig
}

// NewService creates the orchestrator.
func NewService(store Store, client Client, directory *district.Directory, cfg ServiceConfig) *Service {
	if cfg.StalenessThreshold <= 0 {
		cfg.StalenessThreshold = 12 * time.Minute
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = 15 * time.Minute
	}
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 7
	}
	if cfg.TargetHour <= 0 {
		cfg.TargetHour = 14
	}
	if cfg.BackgroundReloadTimeout <= 0 {
		cfg.BackgroundReloadTimeout = 60 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Service{
		store:     store,
		client:    client,
		directory: directory,
		cfg:       cfg,
	}
}

// Rankings returns the current ranking snapshot, reloading synchronously when
// the cache is absent or older than the staleness threshold. When a reload
// fails but a stale snapshot exists, the stale snapshot is served (degraded)
// rather than an error; ErrDataUnavailable is returned only when there is
// nothing to serve at all.
func (s *Service) Rankings(ctx context.Context) (RankingSnapshot, error) {
	snap, ok := s.store.Rankings(ctx)
	if ok && time.Since(snap.GeneratedAt) <= s.cfg.StalenessThreshold {
		metrics.CacheLookupsTotal.WithLabelValues("rankings", "hit").Inc()
		return snap, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("rankings", "miss").Inc()

	fresh, err := s.Reload(ctx)
	if err != nil {
		if ok {
			log.Printf("service: reload failed, serving stale snapshot from %s: %v", snap.GeneratedAt.Format(time.RFC3339), err)
			return snap, nil
		}
		return RankingSnapshot{}, err
	}
	return fresh, nil
}

// CoolestDistricts returns the first n entries of the current ranking.
func (s *Service) CoolestDistricts(ctx context.Context, n int) ([]RankedDistrict, error) {
	snap, err := s.Rankings(ctx)
	if err != nil {
		return nil, err
	}
	return TopN(snap.Districts, n), nil
}

// Reload performs a full fetch-and-recompute cycle unconditionally: two bulk
// upstream calls covering every district, per-district aggregation, ranking,
// then a full-replace snapshot write plus best-effort per-district forecast
// writes. A cycle that yields zero usable districts fails with
// ErrDataUnavailable and writes nothing.
func (s *Service) Reload(ctx context.Context) (RankingSnapshot, error) {
	cycle := uuid.NewString()[:8]
	start := time.Now()
	districts := s.directory.All()

	coords := make([]district.Coordinates, len(districts))
	for i, d := range districts {
		coords[i] = d.Location
	}

	log.Printf("service: reload %s starting for %d districts", cycle, len(districts))

	temps, tempErr := s.client.BulkForecast(ctx, coords, s.cfg.ForecastDays)
	if tempErr != nil {
		log.Printf("service: reload %s bulk forecast failed: %v", cycle, tempErr)
	}
	pm25s, pmErr := s.client.BulkAirQuality(ctx, coords, s.cfg.ForecastDays)
	if pmErr != nil {
		log.Printf("service: reload %s bulk air quality failed: %v", cycle, pmErr)
	}

	today := s.Today()
	averages := make(map[district.District]Sample, len(districts))
	forecasts := make(map[string]DistrictForecast, len(districts))
	generatedAt := time.Now().UTC()

	for _, d := range districts {
		tSeries := temps[d.Location]
		pSeries := pm25s[d.Location]

		avg, err := AverageOverWindow(tSeries, pSeries, s.cfg.TargetHour)
		if err != nil {
			// Best-effort per district: a gap in one district never aborts
			// the whole cycle.
			log.Printf("service: reload %s skipping %s: %v", cycle, d.Name, err)
			continue
		}
		averages[d] = avg

		fc := DistrictForecast{DistrictID: d.ID, GeneratedAt: generatedAt}
		for day := 0; day < s.cfg.ForecastDays; day++ {
			sample, err := DailySampleAt(tSeries, pSeries, s.cfg.TargetHour, today.AddDate(0, 0, day))
			if err != nil {
				// Days that fail aggregation are omitted, not stored as holes.
				continue
			}
			fc.Samples = append(fc.Samples, sample)
		}
		if len(fc.Samples) > 0 {
			forecasts[d.ID] = fc
		}
	}

	if len(averages) == 0 {
		metrics.ReloadsTotal.WithLabelValues("failure").Inc()
		return RankingSnapshot{}, fmt.Errorf("%w: reload %s produced no usable districts", ErrDataUnavailable, cycle)
	}

	snap := RankingSnapshot{
		Districts:   Rank(averages),
		GeneratedAt: generatedAt,
		ExpiresAt:   generatedAt.Add(s.cfg.SnapshotTTL),
	}
	s.store.SetRankings(ctx, snap)

	for id, fc := range forecasts {
		s.store.SetDistrictForecast(ctx, id, fc)
	}

	metrics.ReloadsTotal.WithLabelValues("success").Inc()
	metrics.ReloadDuration.Observe(time.Since(start).Seconds())
	log.Printf("service: reload %s cached %d districts (%d skipped) in %s",
		cycle, len(averages), len(districts)-len(averages), time.Since(start).Round(time.Millisecond))
	return snap, nil
}

// DistrictForecastSample returns the sample for one district on one date.
// Cache hits return immediately; misses issue a targeted single-district
// fetch without waiting for a full reload. Either way, a stale ranking
// snapshot additionally kicks off a best-effort background reload whose
// outcome never affects the value returned here.
func (s *Service) DistrictForecastSample(ctx context.Context, d district.District, date time.Time) (Sample, error) {
	if fc, ok := s.store.DistrictForecast(ctx, d.ID); ok {
		if sample, found := fc.SampleFor(date); found {
			metrics.CacheLookupsTotal.WithLabelValues("forecast", "hit").Inc()
			s.reloadInBackgroundIfStale(ctx)
			return sample, nil
		}
	}
	metrics.CacheLookupsTotal.WithLabelValues("forecast", "miss").Inc()

	sample, err := s.fetchSample(ctx, d.Location, date)
	if err != nil {
		return Sample{}, err
	}
	s.reloadInBackgroundIfStale(ctx)
	return sample, nil
}

// OriginSample fetches conditions for an arbitrary user-supplied point.
// Origins are never part of the district set, so they are never cached.
func (s *Service) OriginSample(ctx context.Context, coords district.Coordinates, date time.Time) (Sample, error) {
	return s.fetchSample(ctx, coords, date)
}

// Recommendation resolves the destination district, fetches origin and
// destination samples for the travel date, and applies the decision policy.
func (s *Service) Recommendation(ctx context.Context, origin district.Coordinates, destinationName string, date time.Time) (Recommendation, error) {
	dest, err := s.directory.ByName(destinationName)
	if err != nil {
		return Recommendation{}, err
	}

	originSample, err := s.OriginSample(ctx, origin, date)
	if err != nil {
		return Recommendation{}, fmt.Errorf("origin conditions: %w", err)
	}
	destSample, err := s.DistrictForecastSample(ctx, dest, date)
	if err != nil {
		return Recommendation{}, fmt.Errorf("destination conditions: %w", err)
	}

	recommended, reason := EvaluateTravel(originSample, destSample, dest.Name)
	return Recommendation{
		Recommended: recommended,
		Reason:      reason,
		Destination: dest.Name,
		Origin:      originSample,
		Forecast:    destSample,
	}, nil
}

// Health reports the cache metadata summary, ok=false before the first
// successful reload.
func (s *Service) Health(ctx context.Context) (CacheMetadata, bool) {
	return s.store.Metadata(ctx)
}

// ForecastDays exposes the forecast window length for request validation.
func (s *Service) ForecastDays() int {
	return s.cfg.ForecastDays
}

// Today is the first day of the forecast window: the current date in the
// upstream timezone.
func (s *Service) Today() time.Time {
	return DateOnly(time.Now().In(s.cfg.Location))
}

// fetchSample is the targeted single-point path shared by origin lookups and
// forecast cache misses.
func (s *Service) fetchSample(ctx context.Context, coords district.Coordinates, date time.Time) (Sample, error) {
	point := []district.Coordinates{coords}

	temps, err := s.client.BulkForecast(ctx, point, s.cfg.ForecastDays)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: forecast fetch for %s: %v", ErrDataUnavailable, coords.Key(), err)
	}
	pm25s, err := s.client.BulkAirQuality(ctx, point, s.cfg.ForecastDays)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: air quality fetch for %s: %v", ErrDataUnavailable, coords.Key(), err)
	}

	sample, err := DailySampleAt(temps[coords], pm25s[coords], s.cfg.TargetHour, date)
	if err != nil {
		return Sample{}, err
	}
	return sample, nil
}

// reloadInBackgroundIfStale spawns a detached reload when the current
// snapshot is missing or older than the staleness threshold, so subsequent
// reads are more likely to hit the cache. Success or failure is only logged.
func (s *Service) reloadInBackgroundIfStale(ctx context.Context) {
	snap, ok := s.store.Rankings(ctx)
	if ok && time.Since(snap.GeneratedAt) <= s.cfg.StalenessThreshold {
		return
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), s.cfg.BackgroundReloadTimeout)
		defer cancel()

		if _, err := s.Reload(bgCtx); err != nil {
			log.Printf("service: background reload failed: %v", err)
		}
	}()
}

package weather

import (
	"context"
	"errors"
	"time"

	"github.com/nhasan-dev/district-travel-advisor/internal/district"
)

var (
	// ErrInsufficientData means aggregation found no qualifying samples for a
	// district or date. Callers performing a bulk reload skip the affected
	// district/day rather than failing the whole cycle.
	ErrInsufficientData = errors.New("insufficient weather data")

	// ErrDataUnavailable means a reload produced zero usable districts, or a
	// targeted fetch failed entirely. Surfaced to the caller, never swallowed.
	ErrDataUnavailable = errors.New("weather data unavailable")
)

// HourlyPoint is one raw upstream measurement.
type HourlyPoint struct {
	Timestamp time.Time
	Value     float64
}

// Sample is the measured or averaged condition for one calendar date.
type Sample struct {
	Date         time.Time `json:"date"`
	TemperatureC float64   `json:"temperatureC"`
	PM25         float64   `json:"pm25"`
}

// RankedDistrict is one entry of a ranking snapshot. Rank is positional,
// assigned by the ranking pass that produced it.
type RankedDistrict struct {
	Rank            int               `json:"rank"`
	District        district.District `json:"district"`
	AvgTemperatureC float64           `json:"avgTemperatureC"`
	AvgPM25         float64           `json:"avgPM25"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}

// RankingSnapshot is the full best-to-worst ordering produced by one reload
// cycle. A new snapshot entirely replaces the old one; there is no partial
// update. Districts are ordered by ascending average temperature, then
// ascending average PM2.5, with Rank == position+1.
type RankingSnapshot struct {
	Districts   []RankedDistrict `json:"districts"`
	GeneratedAt time.Time        `json:"generatedAt"`
	ExpiresAt   time.Time        `json:"expiresAt"`
}

// DistrictForecast holds up to one Sample per calendar date in the forecast
// window for a single district. Dates with insufficient upstream data are
// omitted, not stored as zero values.
type DistrictForecast struct {
	DistrictID  string    `json:"districtId"`
	Samples     []Sample  `json:"samples"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// SampleFor returns the forecast sample for the given calendar date.
func (f DistrictForecast) SampleFor(date time.Time) (Sample, bool) {
	for _, s := range f.Samples {
		if sameDate(s.Date, date) {
			return s, true
		}
	}
	return Sample{}, false
}

// CacheMetadata is a derived, read-only summary of the cache used for health
// reporting. It is always recomputed from the current cache contents.
type CacheMetadata struct {
	LastUpdated     time.Time `json:"lastUpdated"`
	Healthy         bool      `json:"healthy"`
	DistrictsCached int       `json:"districtsCached"`
}

// Client is the upstream weather/air-quality data source. Implementations
// must distinguish transient failures (network, 5xx, 429) from malformed
// responses so callers never retry against corrupt data.
type Client interface {
	// BulkForecast returns hourly temperature series for every coordinate,
	// keyed by the coordinates passed in.
	BulkForecast(ctx context.Context, coords []district.Coordinates, days int) (map[district.Coordinates][]HourlyPoint, error)

	// BulkAirQuality is the PM2.5 analogue of BulkForecast.
	BulkAirQuality(ctx context.Context, coords []district.Coordinates, days int) (map[district.Coordinates][]HourlyPoint, error)
}

// Store is the contract the cache implementations (Redis, in-memory fallback,
// and the failover wrapper) must satisfy. Reads of absent or expired keys
// report ok=false, never an error; writes are fire-and-forget and must be
// safe under concurrent invocation.
type Store interface {
	Rankings(ctx context.Context) (RankingSnapshot, bool)
	SetRankings(ctx context.Context, snap RankingSnapshot)

	DistrictForecast(ctx context.Context, districtID string) (DistrictForecast, bool)
	SetDistrictForecast(ctx context.Context, districtID string, fc DistrictForecast)

	Metadata(ctx context.Context) (CacheMetadata, bool)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

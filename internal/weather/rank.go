package weather

import (
	"sort"
	"time"

	"github.com/nhasan-dev/district-travel-advisor/internal/district"
)

// Rank orders districts best-to-worst: ascending average temperature, ties
// broken by ascending average PM2.5, then district name for determinism.
// Rank is position+1 and every entry shares one GeneratedAt timestamp.
// An empty input yields an empty ranking, not an error.
func Rank(samples map[district.District]Sample) []RankedDistrict {
	generatedAt := time.Now().UTC()

	ranked := make([]RankedDistrict, 0, len(samples))
	for d, s := range samples {
		ranked = append(ranked, RankedDistrict{
			District:        d,
			AvgTemperatureC: s.TemperatureC,
			AvgPM25:         s.PM25,
			GeneratedAt:     generatedAt,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AvgTemperatureC != ranked[j].AvgTemperatureC {
			return ranked[i].AvgTemperatureC < ranked[j].AvgTemperatureC
		}
		if ranked[i].AvgPM25 != ranked[j].AvgPM25 {
			return ranked[i].AvgPM25 < ranked[j].AvgPM25
		}
		return ranked[i].District.Name < ranked[j].District.Name
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// TopN returns the first n entries of an already-ranked list. When fewer
// than n districts are present all of them are returned; a short list is
// valid.
func TopN(ranked []RankedDistrict, n int) []RankedDistrict {
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

package weather

import (
	"fmt"
	"strings"
)

// Recommendation is the travel decision for one origin/destination pair.
type Recommendation struct {
	Recommended bool   `json:"recommended"`
	Reason      string `json:"reason"`
	Destination string `json:"destination"`
	Origin      Sample `json:"origin"`
	Forecast    Sample `json:"forecast"`
}

// EvaluateTravel decides whether traveling from origin conditions to the
// destination conditions is advisable. The destination must be strictly
// cooler AND strictly cleaner; equality on either axis counts as not better.
// The reason text is composed from the failing condition(s) only.
func EvaluateTravel(origin, destination Sample, destinationName string) (bool, string) {
	cooler := destination.TemperatureC < origin.TemperatureC
	cleaner := destination.PM25 < origin.PM25

	if cooler && cleaner {
		tempDelta := origin.TemperatureC - destination.TemperatureC
		pmImprovement := 0.0
		if origin.PM25 > 0 {
			pmImprovement = (origin.PM25 - destination.PM25) / origin.PM25 * 100
		}
		return true, fmt.Sprintf(
			"Recommended: %s is %.1f°C cooler and has %.1f%% better air quality than your location.",
			destinationName, tempDelta, pmImprovement,
		)
	}

	var parts []string
	if !cooler {
		if destination.TemperatureC > origin.TemperatureC {
			parts = append(parts, fmt.Sprintf("is %.1f°C warmer", destination.TemperatureC-origin.TemperatureC))
		} else {
			parts = append(parts, "is the same temperature")
		}
	}
	if !cleaner {
		if destination.PM25 > origin.PM25 {
			parts = append(parts, fmt.Sprintf("has %.1f μg/m³ higher PM2.5", destination.PM25-origin.PM25))
		} else {
			parts = append(parts, "has similar air quality")
		}
	}

	return false, fmt.Sprintf(
		"Not recommended: %s %s compared to your location.",
		destinationName, strings.Join(parts, " and "),
	)
}

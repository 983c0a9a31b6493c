package weather

import (
	"fmt"
	"time"
)

// DailySampleAt extracts the sample for one calendar date from a pair of
// hourly series, taking the first entry of each series whose date matches and
// whose hour-of-day equals targetHour. Both series must contain a qualifying
// entry, otherwise ErrInsufficientData is returned.
func DailySampleAt(temps, pm25s []HourlyPoint, targetHour int, date time.Time) (Sample, error) {
	temp, ok := pointAt(temps, targetHour, date)
	if !ok {
		return Sample{}, fmt.Errorf("%w: no temperature at %02d:00 on %s", ErrInsufficientData, targetHour, date.Format("2006-01-02"))
	}
	pm, ok := pointAt(pm25s, targetHour, date)
	if !ok {
		return Sample{}, fmt.Errorf("%w: no pm2.5 at %02d:00 on %s", ErrInsufficientData, targetHour, date.Format("2006-01-02"))
	}
	return Sample{
		Date:         DateOnly(date),
		TemperatureC: temp,
		PM25:         pm,
	}, nil
}

// AverageOverWindow averages, independently per series, every entry at
// targetHour across all available dates. A date missing from one series still
// contributes its value from the other, so a partial upstream gap in one
// metric does not poison the other. The returned sample is dated "now".
// Fails with ErrInsufficientData when either series yields zero qualifying
// entries.
func AverageOverWindow(temps, pm25s []HourlyPoint, targetHour int) (Sample, error) {
	avgTemp, nTemp := meanAt(temps, targetHour)
	avgPM, nPM := meanAt(pm25s, targetHour)

	if nTemp == 0 {
		return Sample{}, fmt.Errorf("%w: no temperature entries at %02d:00", ErrInsufficientData, targetHour)
	}
	if nPM == 0 {
		return Sample{}, fmt.Errorf("%w: no pm2.5 entries at %02d:00", ErrInsufficientData, targetHour)
	}

	return Sample{
		Date:         DateOnly(time.Now().UTC()),
		TemperatureC: avgTemp,
		PM25:         avgPM,
	}, nil
}

// pointAt returns the first value at targetHour on the given date.
func pointAt(series []HourlyPoint, targetHour int, date time.Time) (float64, bool) {
	for _, p := range series {
		if p.Timestamp.Hour() == targetHour && sameDate(p.Timestamp, date) {
			return p.Value, true
		}
	}
	return 0, false
}

// meanAt averages every entry at targetHour regardless of date.
func meanAt(series []HourlyPoint, targetHour int) (float64, int) {
	var sum float64
	var n int
	for _, p := range series {
		if p.Timestamp.Hour() == targetHour {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

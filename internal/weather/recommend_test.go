package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateTravel(t *testing.T) {
	sample := func(temp, pm float64) Sample {
		return Sample{TemperatureC: temp, PM25: pm}
	}

	t.Run("cooler and cleaner destination is recommended", func(t *testing.T) {
		ok, reason := EvaluateTravel(sample(30.0, 45.0), sample(25.0, 20.0), "Sylhet")
		assert.True(t, ok)
		assert.Contains(t, reason, "cooler")
		assert.Contains(t, reason, "air quality")
		assert.Contains(t, reason, "5.0°C")
	})

	t.Run("cooler but dirtier destination is rejected", func(t *testing.T) {
		ok, reason := EvaluateTravel(sample(30.0, 20.0), sample(25.0, 45.0), "Dhaka")
		assert.False(t, ok)
		assert.Contains(t, reason, "PM2.5")
		assert.NotContains(t, reason, "warmer")
	})

	t.Run("cleaner but warmer destination is rejected", func(t *testing.T) {
		ok, reason := EvaluateTravel(sample(25.0, 45.0), sample(30.0, 20.0), "Chattogram")
		assert.False(t, ok)
		assert.Contains(t, reason, "warmer")
		assert.NotContains(t, reason, "PM2.5")
	})

	t.Run("warmer and dirtier destination reports both reasons", func(t *testing.T) {
		ok, reason := EvaluateTravel(sample(25.0, 20.0), sample(30.0, 45.0), "Dhaka")
		assert.False(t, ok)
		assert.Contains(t, reason, "warmer")
		assert.Contains(t, reason, "PM2.5")
		assert.Contains(t, reason, " and ")
	})

	t.Run("identical conditions report equality on both axes", func(t *testing.T) {
		ok, reason := EvaluateTravel(sample(25.0, 20.0), sample(25.0, 20.0), "Khulna")
		assert.False(t, ok)
		assert.Contains(t, reason, "same temperature")
		assert.Contains(t, reason, "similar air quality")
	})

	t.Run("equality on a single axis still rejects", func(t *testing.T) {
		// Equal temperature, better air: cooler-than is strict.
		ok, reason := EvaluateTravel(sample(25.0, 45.0), sample(25.0, 20.0), "Barishal")
		assert.False(t, ok)
		assert.Contains(t, reason, "same temperature")
		assert.NotContains(t, reason, "air quality")

		// Equal air, cooler temperature.
		ok, reason = EvaluateTravel(sample(30.0, 20.0), sample(25.0, 20.0), "Barishal")
		assert.False(t, ok)
		assert.Contains(t, reason, "similar air quality")
	})

	t.Run("zero origin pm25 does not divide by zero", func(t *testing.T) {
		ok, reason := EvaluateTravel(sample(30.0, 0.0), sample(25.0, 0.0), "Bandarban")
		assert.False(t, ok, "equal pm25 cannot be an improvement")
		assert.Contains(t, reason, "similar air quality")
	})
}

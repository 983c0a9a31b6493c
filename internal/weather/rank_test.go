package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhasan-dev/district-travel-advisor/internal/district"
)

func testDistrict(id, name string) district.District {
	return district.District{ID: id, Name: name}
}

func TestRank(t *testing.T) {
	samples := map[district.District]Sample{
		testDistrict("1", "Dhaka"):      {TemperatureC: 33.0, PM25: 80.0},
		testDistrict("2", "Sylhet"):     {TemperatureC: 27.0, PM25: 30.0},
		testDistrict("3", "Rangamati"):  {TemperatureC: 27.0, PM25: 22.0},
		testDistrict("4", "Panchagarh"): {TemperatureC: 24.5, PM25: 40.0},
	}

	ranked := Rank(samples)
	require.Len(t, ranked, 4)

	// rank[i] == i+1 and the ordering keys are monotone.
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			prev := ranked[i-1]
			assert.LessOrEqual(t, prev.AvgTemperatureC, r.AvgTemperatureC)
			if prev.AvgTemperatureC == r.AvgTemperatureC {
				assert.LessOrEqual(t, prev.AvgPM25, r.AvgPM25)
			}
			assert.True(t, prev.GeneratedAt.Equal(r.GeneratedAt), "entries share one GeneratedAt")
		}
	}

	assert.Equal(t, "Panchagarh", ranked[0].District.Name)
	assert.Equal(t, "Rangamati", ranked[1].District.Name, "temperature tie broken by PM2.5")
	assert.Equal(t, "Sylhet", ranked[2].District.Name)
	assert.Equal(t, "Dhaka", ranked[3].District.Name)
}

func TestRankEmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank(map[district.District]Sample{}))
}

func TestTopN(t *testing.T) {
	samples := map[district.District]Sample{
		testDistrict("1", "Dhaka"):  {TemperatureC: 33.0, PM25: 80.0},
		testDistrict("2", "Sylhet"): {TemperatureC: 27.0, PM25: 30.0},
	}

	ranked := Rank(samples)

	t.Run("truncates to n", func(t *testing.T) {
		top := TopN(ranked, 1)
		require.Len(t, top, 1)
		assert.Equal(t, "Sylhet", top[0].District.Name)
	})

	t.Run("n larger than input returns everything without error", func(t *testing.T) {
		assert.Len(t, TopN(ranked, 10), 2)
	})

	t.Run("non-positive n returns nothing", func(t *testing.T) {
		assert.Empty(t, TopN(ranked, 0))
	})
}

package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

func monthlySeries(values []float64) *models.PreparedSeries {
	dates := make([]time.Time, len(values))
	for i := range dates {
		dates[i] = time.Date(2025, time.Month(i+1), 28, 0, 0, 0, 0, time.UTC)
	}
	return &models.PreparedSeries{Dates: dates, Values: values, Frequency: models.FrequencyMonthly}
}

func TestExtrapolateTrendRecoversLine(t *testing.T) {
	// y = 100 + 10x, exactly.
	values := make([]float64, 12)
	for i := range values {
		values[i] = 100 + 10*float64(i)
	}

	forecast, err := ExtrapolateTrend(monthlySeries(values), 3)
	require.NoError(t, err)
	require.Len(t, forecast, 3)

	assert.InDelta(t, 220.0, forecast[0].Value, 1e-6)
	assert.InDelta(t, 230.0, forecast[1].Value, 1e-6)
	assert.InDelta(t, 240.0, forecast[2].Value, 1e-6)
}

func TestExtrapolateTrendSinglePointIsFlat(t *testing.T) {
	series := &models.PreparedSeries{
		Dates:     []time.Time{time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)},
		Values:    []float64{42},
		Frequency: models.FrequencyMonthly,
	}

	forecast, err := ExtrapolateTrend(series, 4)
	require.NoError(t, err)
	for _, point := range forecast {
		assert.Equal(t, 42.0, point.Value)
	}
}

func TestExtrapolateTrendEmptySeries(t *testing.T) {
	_, err := ExtrapolateTrend(&models.PreparedSeries{}, 3)
	assert.ErrorIs(t, err, ErrNoHistoricalData)
}

func TestFutureDatesMonthlyAnchorsAtMonthStart(t *testing.T) {
	// Last observation late in January; forecast months are anchored at the
	// first of each following month, so February's short length never skips
	// a month.
	last := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	dates := FutureDates(last, models.FrequencyMonthly, 4)

	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), dates[2])
	assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), dates[3])
}

func TestFutureDatesMonthlyCrossYear(t *testing.T) {
	last := time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC)
	dates := FutureDates(last, models.FrequencyMonthly, 3)

	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), dates[2])
}

func TestFutureDatesDaily(t *testing.T) {
	last := time.Date(2025, time.March, 30, 0, 0, 0, 0, time.UTC)
	dates := FutureDates(last, models.FrequencyDaily, 3)

	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), dates[2])
}

func TestFutureDatesUnknownFrequency(t *testing.T) {
	last := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	dates := FutureDates(last, models.Frequency("W"), 2)

	assert.Equal(t, last.Add(30*24*time.Hour), dates[0])
	assert.Equal(t, last.Add(60*24*time.Hour), dates[1])
}

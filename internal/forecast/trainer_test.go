package forecast

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func trendingSeries(n int) *models.PreparedSeries {
	dates := make([]time.Time, n)
	values := make([]float64, n)
	base := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		dates[i] = base.AddDate(0, i, 0)
		values[i] = 1000 + 25*float64(i)
	}
	return &models.PreparedSeries{Dates: dates, Values: values, Frequency: models.FrequencyMonthly}
}

func newTestTrainer(tier models.ComplexityTier, dataLen, horizon int) *Trainer {
	profile := SelectProfile(tier, dataLen)
	return NewTrainer(profile, tier, horizon, testLogger())
}

func TestTrainerPrimarySucceeds(t *testing.T) {
	series := trendingSeries(24)
	trainer := newTestTrainer(models.TierSimple, series.Len(), 6)

	forecast, meta, err := trainer.Run(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, trainer.State())
	assert.Equal(t, models.StrategyPrimary, meta.Strategy)
	assert.NotEmpty(t, meta.BestModelName)
	assert.NotNil(t, meta.BestScore)
	assert.Greater(t, meta.ModelsEvaluated, 0)
	assert.False(t, meta.Degraded())
	require.Len(t, forecast, 6)

	// Forecast dates are contiguous months after the last observation.
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), forecast[0].Date)
	for _, point := range forecast {
		assert.GreaterOrEqual(t, point.Value, 0.0)
	}
}

func TestTrainerPrimaryRespectsGrowthConstraint(t *testing.T) {
	series := trendingSeries(36)
	trainer := newTestTrainer(models.TierMedium, series.Len(), 12)

	forecast, _, err := trainer.Run(context.Background(), series)
	require.NoError(t, err)

	maxRecent := series.Values[series.Len()-1]
	for _, point := range forecast {
		assert.LessOrEqual(t, point.Value, maxRecent*2.0+1e-9)
	}
}

func TestTrainerFallbackOnDegeneratePrimary(t *testing.T) {
	// An all-zero series makes ZeroesNaive the primary winner, which the
	// trainer must reject. The fallback set contains no zero baseline, so
	// LastValueNaive (or a peer) wins there with a perfect score.
	n := 24
	series := trendingSeries(n)
	for i := range series.Values {
		series.Values[i] = 0
	}
	trainer := newTestTrainer(models.TierSimple, n, 4)

	forecast, meta, err := trainer.Run(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyFallbackSimple, meta.Strategy)
	assert.True(t, strings.HasSuffix(meta.BestModelName, " (fallback)"),
		"fallback results are labeled, got %q", meta.BestModelName)
	assert.True(t, meta.Degraded())
	require.Len(t, forecast, 4)
}

func TestTrainerTrendTierOnTinySeries(t *testing.T) {
	// Four points leave no room for a held-out validation window, so both
	// training tiers fail and the closed-form trend fit answers.
	series := trendingSeries(4)
	trainer := newTestTrainer(models.TierSimple, series.Len(), 3)

	forecast, meta, err := trainer.Run(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, models.StrategyTrendExtrapolation, meta.Strategy)
	assert.Equal(t, TrendModelName, meta.BestModelName)
	assert.Nil(t, meta.BestScore)
	assert.True(t, meta.Degraded())
	require.Len(t, forecast, 3)

	// The series is a perfect line; the trend tier should continue it.
	assert.InDelta(t, 1100.0, forecast[0].Value, 1e-6)
}

func TestTrainerEmptySeriesFails(t *testing.T) {
	trainer := newTestTrainer(models.TierSimple, 0, 3)

	_, _, err := trainer.Run(context.Background(), &models.PreparedSeries{})
	assert.ErrorIs(t, err, ErrNoHistoricalData)
	assert.Equal(t, StateFailed, trainer.State())
}

func TestTrainerCancelledContext(t *testing.T) {
	series := trendingSeries(24)
	trainer := newTestTrainer(models.TierSimple, series.Len(), 6)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Cancellation fails both training tiers; the trend tier is synchronous
	// and still answers.
	_, meta, err := trainer.Run(ctx, series)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyTrendExtrapolation, meta.Strategy)
}

func TestTrainerMetadataCarriesProfile(t *testing.T) {
	series := trendingSeries(30)
	profile := SelectProfile(models.TierComplex, series.Len())
	trainer := NewTrainer(profile, models.TierComplex, 6, testLogger())

	_, meta, err := trainer.Run(context.Background(), series)
	require.NoError(t, err)

	assert.Equal(t, models.TierComplex, meta.ComplexityTier)
	assert.Equal(t, 6, meta.ForecastHorizon)
	assert.Equal(t, models.FrequencyMonthly, meta.Frequency)
	assert.Equal(t, 3, meta.Generations)
	assert.Equal(t, 3, meta.ValidationFolds)
}

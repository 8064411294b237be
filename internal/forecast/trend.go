package forecast

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// TrendModelName is reported as the best model when the trend tier produced
// the forecast.
const TrendModelName = "LinearTrend (extrapolation)"

// ExtrapolateTrend is the last-resort forecast: an ordinary least-squares
// line fit to the historical values against their sequence index, extended
// forward for the requested horizon. It has no dependency on the model
// ensemble and always has an answer for any non-empty series.
//
// With fewer than two historical points there is no line to fit; the last
// known value is repeated for the entire horizon instead.
func ExtrapolateTrend(series *models.PreparedSeries, horizon int) (models.ForecastSeries, error) {
	if series.Len() == 0 {
		return nil, ErrNoHistoricalData
	}

	n := series.Len()
	forecast := make(models.ForecastSeries, horizon)
	dates := FutureDates(series.LastDate(), series.Frequency, horizon)

	if n < 2 {
		last := series.Values[n-1]
		for i := range forecast {
			forecast[i] = models.ForecastPoint{Date: dates[i], Value: last}
		}
		return forecast, nil
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, series.Values, nil, false)

	for i := range forecast {
		x := float64(n + i)
		forecast[i] = models.ForecastPoint{Date: dates[i], Value: intercept + slope*x}
	}
	return forecast, nil
}

// FutureDates generates the forecast timestamps: one per period, starting one
// period after the last historical timestamp. Monthly series step by calendar
// months anchored at month start; daily series step by fixed 24h deltas; any
// other frequency falls back to 30-day deltas.
func FutureDates(last time.Time, freq models.Frequency, horizon int) []time.Time {
	dates := make([]time.Time, horizon)
	switch freq {
	case models.FrequencyMonthly:
		cur := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, last.Location())
		for i := range dates {
			cur = cur.AddDate(0, 1, 0)
			dates[i] = cur
		}
	case models.FrequencyDaily:
		cur := last
		for i := range dates {
			cur = cur.Add(24 * time.Hour)
			dates[i] = cur
		}
	default:
		cur := last
		for i := range dates {
			cur = cur.Add(30 * 24 * time.Hour)
			dates[i] = cur
		}
	}
	return dates
}

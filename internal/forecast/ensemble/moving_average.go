package ensemble

import (
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// SMA forecasts a flat continuation of the simple moving average over the
// trailing window.
type SMA struct {
	window int
}

func NewSMA(window int) *SMA {
	if window < 2 {
		window = 3
	}
	return &SMA{window: window}
}

func (f *SMA) Name() string { return fmt.Sprintf("SMA(%d)", f.window) }

func (f *SMA) Forecast(values []float64, horizon int) ([]float64, error) {
	if len(values) < f.window {
		return nil, fmt.Errorf("need at least %d points for SMA window, got %d", f.window, len(values))
	}
	sma := trend.NewSmaWithPeriod[float64](f.window)
	smoothed := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	if len(smoothed) == 0 {
		return nil, fmt.Errorf("SMA produced no output")
	}
	last := smoothed[len(smoothed)-1]
	out := make([]float64, horizon)
	for i := range out {
		out[i] = last
	}
	return out, nil
}

// EMADrift extends the exponential moving average forward with the drift
// between its last two points, giving a cheap trend-following forecast.
type EMADrift struct {
	period int
}

func NewEMADrift(period int) *EMADrift {
	if period < 2 {
		period = 6
	}
	return &EMADrift{period: period}
}

func (f *EMADrift) Name() string { return fmt.Sprintf("EMADrift(%d)", f.period) }

func (f *EMADrift) Forecast(values []float64, horizon int) ([]float64, error) {
	if len(values) < f.period+1 {
		return nil, fmt.Errorf("need at least %d points for EMA drift, got %d", f.period+1, len(values))
	}
	ema := trend.NewEmaWithPeriod[float64](f.period)
	smoothed := helper.ChanToSlice(ema.Compute(helper.SliceToChan(values)))
	if len(smoothed) < 2 {
		return nil, fmt.Errorf("EMA produced too little output")
	}
	last := smoothed[len(smoothed)-1]
	drift := last - smoothed[len(smoothed)-2]
	out := make([]float64, horizon)
	for i := range out {
		out[i] = last + drift*float64(i+1)
	}
	return out, nil
}

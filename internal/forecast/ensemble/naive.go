package ensemble

import "fmt"

// ZeroesNaive always predicts zero. It is kept in the candidate pool as a
// sanity baseline: any real model that cannot beat it is worthless, and a run
// it wins is treated as degenerate by the trainer.
type ZeroesNaive struct{}

func NewZeroesNaive() *ZeroesNaive { return &ZeroesNaive{} }

func (*ZeroesNaive) Name() string { return ZeroesNaiveName }

func (*ZeroesNaive) Forecast(values []float64, horizon int) ([]float64, error) {
	return make([]float64, horizon), nil
}

// LastValueNaive carries the last observed value forward.
type LastValueNaive struct{}

func NewLastValueNaive() *LastValueNaive { return &LastValueNaive{} }

func (*LastValueNaive) Name() string { return "LastValueNaive" }

func (*LastValueNaive) Forecast(values []float64, horizon int) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	out := make([]float64, horizon)
	last := values[len(values)-1]
	for i := range out {
		out[i] = last
	}
	return out, nil
}

// AverageValueNaive predicts the historical mean.
type AverageValueNaive struct{}

func NewAverageValueNaive() *AverageValueNaive { return &AverageValueNaive{} }

func (*AverageValueNaive) Name() string { return "AverageValueNaive" }

func (*AverageValueNaive) Forecast(values []float64, horizon int) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	out := make([]float64, horizon)
	for i := range out {
		out[i] = mean
	}
	return out, nil
}

// SeasonalNaive repeats the last full season.
type SeasonalNaive struct {
	period int
}

func NewSeasonalNaive(period int) *SeasonalNaive {
	if period < 2 {
		period = 12
	}
	return &SeasonalNaive{period: period}
}

func (f *SeasonalNaive) Name() string { return fmt.Sprintf("SeasonalNaive(%d)", f.period) }

func (f *SeasonalNaive) Forecast(values []float64, horizon int) ([]float64, error) {
	if len(values) < f.period {
		return nil, fmt.Errorf("need at least %d points for one season, got %d", f.period, len(values))
	}
	season := values[len(values)-f.period:]
	out := make([]float64, horizon)
	for i := range out {
		out[i] = season[i%f.period]
	}
	return out, nil
}

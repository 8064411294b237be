package ensemble

import (
	"fmt"
)

// ETS is simple exponential smoothing: the forecast is a flat continuation of
// the final smoothed level.
type ETS struct {
	alpha float64
}

func NewETS(alpha float64) *ETS {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}
	return &ETS{alpha: alpha}
}

func (f *ETS) Name() string { return fmt.Sprintf("ETS(%.1f)", f.alpha) }

func (f *ETS) Forecast(values []float64, horizon int) ([]float64, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 points for exponential smoothing, got %d", len(values))
	}
	level := values[0]
	for _, v := range values[1:] {
		level = f.alpha*v + (1-f.alpha)*level
	}
	out := make([]float64, horizon)
	for i := range out {
		out[i] = level
	}
	return out, nil
}

// HoltWinters is triple exponential smoothing with multiplicative
// seasonality. It needs at least two full seasons of history.
type HoltWinters struct {
	alpha, beta, gamma float64
	period             int
}

func NewHoltWinters(alpha, beta, gamma float64, period int) *HoltWinters {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}
	if beta <= 0 || beta > 1 {
		beta = 0.1
	}
	if gamma <= 0 || gamma > 1 {
		gamma = 0.1
	}
	if period < 2 {
		period = 12
	}
	return &HoltWinters{alpha: alpha, beta: beta, gamma: gamma, period: period}
}

func (f *HoltWinters) Name() string {
	return fmt.Sprintf("HoltWinters(%.1f,%.1f,%.1f)", f.alpha, f.beta, f.gamma)
}

func (f *HoltWinters) Forecast(values []float64, horizon int) ([]float64, error) {
	n := len(values)
	if n < f.period*2 {
		return nil, fmt.Errorf("need %d points (two seasons) for Holt-Winters, got %d", f.period*2, n)
	}

	level := make([]float64, n)
	trendC := make([]float64, n)
	seasonal := make([]float64, n)

	// Initial level is the mean of the first season, initial trend the
	// average step across it.
	sum := 0.0
	for i := 0; i < f.period; i++ {
		sum += values[i]
	}
	level[0] = sum / float64(f.period)
	trendC[0] = (values[f.period] - values[0]) / float64(f.period)
	for i := 0; i < f.period; i++ {
		if level[0] != 0 {
			seasonal[i] = values[i] / level[0]
		} else {
			seasonal[i] = 1.0
		}
	}

	for i := 1; i < n; i++ {
		prevSeasonal := seasonal[i]
		if i >= f.period {
			prevSeasonal = seasonal[i-f.period]
		}
		if prevSeasonal == 0 {
			prevSeasonal = 1.0
		}

		level[i] = f.alpha*(values[i]/prevSeasonal) + (1-f.alpha)*(level[i-1]+trendC[i-1])
		trendC[i] = f.beta*(level[i]-level[i-1]) + (1-f.beta)*trendC[i-1]
		if level[i] != 0 {
			seasonal[i] = f.gamma*(values[i]/level[i]) + (1-f.gamma)*prevSeasonal
		} else {
			seasonal[i] = prevSeasonal
		}
	}

	out := make([]float64, horizon)
	lastLevel := level[n-1]
	lastTrend := trendC[n-1]
	for i := range out {
		factor := seasonal[n-f.period+(i%f.period)]
		if factor == 0 {
			factor = 1.0
		}
		out[i] = (lastLevel + float64(i+1)*lastTrend) * factor
	}
	return out, nil
}

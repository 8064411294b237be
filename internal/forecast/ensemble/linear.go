package ensemble

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// LinearTrend fits an ordinary least-squares line to the values against their
// sequence index and extends it forward.
type LinearTrend struct{}

func NewLinearTrend() *LinearTrend { return &LinearTrend{} }

func (*LinearTrend) Name() string { return "LinearTrend" }

func (*LinearTrend) Forecast(values []float64, horizon int) ([]float64, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 points for a regression, got %d", len(values))
	}
	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(xs, values, nil, false)

	out := make([]float64, horizon)
	for i := range out {
		out[i] = intercept + slope*float64(len(values)+i)
	}
	return out, nil
}

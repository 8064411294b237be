package ensemble

import (
	"errors"
	"fmt"
	"math"
)

// ARIMA implements AutoRegressive Integrated Moving Average forecasting.
//
// ARIMA(p,d,q): p past values feed the AR term, the series is differenced d
// times for stationarity, and q past prediction errors feed the MA term. AR
// coefficients come from the Yule-Walker equations solved with
// Levinson-Durbin; MA coefficients use the (simplified) residual
// autocorrelation approach.
type ARIMA struct {
	p, d, q int
}

func NewARIMA(p, d, q int) *ARIMA {
	if p < 1 {
		p = 1
	}
	if d < 0 || d > 2 {
		d = 1
	}
	if q < 0 {
		q = 1
	}
	return &ARIMA{p: p, d: d, q: q}
}

func (f *ARIMA) Name() string { return fmt.Sprintf("ARIMA(%d,%d,%d)", f.p, f.d, f.q) }

func (f *ARIMA) Forecast(values []float64, horizon int) ([]float64, error) {
	minPoints := f.p + f.d
	if f.q+f.d > minPoints {
		minPoints = f.q + f.d
	}
	if minPoints < 8 {
		minPoints = 8
	}
	if len(values) < minPoints {
		return nil, fmt.Errorf("need at least %d points for ARIMA(%d,%d,%d), got %d",
			minPoints, f.p, f.d, f.q, len(values))
	}

	// Difference to stationarity, keeping every level so the forecast can be
	// integrated back up.
	levels := make([][]float64, f.d+1)
	levels[0] = values
	for lvl := 1; lvl <= f.d; lvl++ {
		levels[lvl] = diff(levels[lvl-1])
	}
	stationary := levels[f.d]

	m := mean(stationary)
	centered := make([]float64, len(stationary))
	for i, v := range stationary {
		centered[i] = v - m
	}

	arCoeffs, err := fitAR(centered, f.p)
	if err != nil {
		return nil, fmt.Errorf("AR fit: %w", err)
	}
	residuals := arResiduals(centered, arCoeffs)
	maCoeffs := fitMA(residuals, f.q)

	// Forecast in the stationary space. Future errors are their expectation
	// (zero), so the MA term only contributes on the first step.
	history := append([]float64(nil), centered...)
	lastValues := make([]float64, f.d)
	for lvl := 0; lvl < f.d; lvl++ {
		lastValues[lvl] = levels[lvl][len(levels[lvl])-1]
	}

	out := make([]float64, horizon)
	for t := 0; t < horizon; t++ {
		pred := 0.0
		for i := 0; i < f.p; i++ {
			pred += arCoeffs[i] * history[len(history)-1-i]
		}
		if t == 0 {
			for j := 0; j < f.q && j < len(residuals); j++ {
				pred += maCoeffs[j] * residuals[len(residuals)-1-j]
			}
		}
		history = append(history, pred)

		// Integrate the stationary prediction back through each differenced
		// level to recover the original scale.
		if f.d == 0 {
			out[t] = pred + m
			continue
		}
		val := pred + m
		for lvl := f.d - 1; lvl >= 0; lvl-- {
			lastValues[lvl] += val
			val = lastValues[lvl]
		}
		out[t] = lastValues[0]
	}
	return out, nil
}

func diff(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, len(series)-1)
	for i := range out {
		out[i] = series[i+1] - series[i]
	}
	return out
}

func mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

func variance(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	m := mean(series)
	var sumSq float64
	for _, v := range series {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(series))
}

// fitAR estimates AR coefficients from the Yule-Walker equations via
// Levinson-Durbin. A flat series yields zero coefficients rather than an
// error.
func fitAR(centered []float64, p int) ([]float64, error) {
	if p == 0 {
		return nil, nil
	}
	if variance(centered) < 1e-10 {
		return make([]float64, p), nil
	}

	acf := make([]float64, p+1)
	for k := 0; k <= p; k++ {
		acf[k] = autocorr(centered, k)
	}
	coeffs, err := levinsonDurbin(acf, p)
	if err != nil {
		// Numerical trouble: fall back to a mild first-order persistence.
		coeffs = make([]float64, p)
		coeffs[0] = 0.5
	}
	return coeffs, nil
}

func autocorr(series []float64, lag int) float64 {
	if lag < 0 || lag >= len(series) {
		return 0
	}
	n := len(series)
	m := mean(series)

	var c0, ck float64
	for i := 0; i < n; i++ {
		c0 += (series[i] - m) * (series[i] - m)
	}
	for i := 0; i < n-lag; i++ {
		ck += (series[i] - m) * (series[i+lag] - m)
	}
	if c0 == 0 {
		return 0
	}
	return ck / c0
}

func levinsonDurbin(acf []float64, p int) ([]float64, error) {
	phi := make([][]float64, p+1)
	for i := range phi {
		phi[i] = make([]float64, p+1)
	}
	v := acf[0]

	for k := 1; k <= p; k++ {
		num := acf[k]
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
		}
		if v == 0 {
			return nil, errors.New("numerical instability in Levinson-Durbin")
		}
		phi[k][k] = num / v
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
		v *= 1 - phi[k][k]*phi[k][k]
		if v < 0 {
			return nil, errors.New("negative variance in Levinson-Durbin")
		}
	}

	coeffs := make([]float64, p)
	for i := 0; i < p; i++ {
		coeffs[i] = phi[p][i+1]
	}
	return coeffs, nil
}

// arResiduals computes one-step-ahead prediction errors of the AR part, used
// to fit and seed the MA term.
func arResiduals(centered, arCoeffs []float64) []float64 {
	p := len(arCoeffs)
	if len(centered) <= p {
		return nil
	}
	residuals := make([]float64, len(centered)-p)
	for t := p; t < len(centered); t++ {
		pred := 0.0
		for i := 0; i < p; i++ {
			pred += arCoeffs[i] * centered[t-1-i]
		}
		residuals[t-p] = centered[t] - pred
	}
	return residuals
}

// fitMA uses residual autocorrelations as MA coefficients, clamped into the
// invertible range.
func fitMA(residuals []float64, q int) []float64 {
	if q == 0 || len(residuals) == 0 {
		return nil
	}
	coeffs := make([]float64, q)
	for i := 0; i < q && i < len(residuals); i++ {
		coeffs[i] = autocorr(residuals, i+1)
	}
	for i := range coeffs {
		if math.Abs(coeffs[i]) > 1 {
			coeffs[i] = coeffs[i] / math.Abs(coeffs[i]) * 0.9
		}
	}
	return coeffs
}

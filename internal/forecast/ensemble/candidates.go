package ensemble

import (
	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// Candidates returns the pool of model variants eligible for a training run.
// The candidate set widens with the complexity tier; extra generations add
// further hyperparameter variants of the same models, so the search is
// deterministic and strictly grows with effort.
func Candidates(set models.CandidateSet, generations, seasonalPeriod int) []Forecaster {
	if generations < 1 {
		generations = 1
	}
	if generations > 3 {
		generations = 3
	}

	smaWindows := [][]int{{3}, {3, 6}, {3, 6, 12}}[generations-1]
	emaPeriods := [][]int{{6}, {3, 6}, {3, 6, 12}}[generations-1]
	etsAlphas := [][]float64{{0.3}, {0.3, 0.5}, {0.3, 0.5, 0.8}}[generations-1]
	hwParams := [][]hwVariant{
		{{0.3, 0.1, 0.1}},
		{{0.3, 0.1, 0.1}, {0.5, 0.2, 0.1}},
		{{0.3, 0.1, 0.1}, {0.5, 0.2, 0.1}, {0.8, 0.2, 0.2}},
	}[generations-1]
	arimaOrders := [][][3]int{
		{{1, 1, 1}},
		{{1, 1, 1}, {2, 1, 1}},
		{{1, 1, 1}, {2, 1, 1}, {1, 1, 2}},
	}[generations-1]

	var pool []Forecaster

	// superfast: the minimal, most stable models.
	pool = append(pool,
		NewZeroesNaive(),
		NewLastValueNaive(),
		NewAverageValueNaive(),
	)
	for _, w := range smaWindows {
		pool = append(pool, NewSMA(w))
	}
	if set == models.CandidateSetSuperfast {
		return pool
	}

	// fast adds cheap trend- and season-aware models.
	pool = append(pool, NewSeasonalNaive(seasonalPeriod), NewLinearTrend())
	for _, a := range etsAlphas {
		pool = append(pool, NewETS(a))
	}
	for _, p := range emaPeriods {
		pool = append(pool, NewEMADrift(p))
	}
	if set == models.CandidateSetFast {
		return pool
	}

	// default adds the full standard set; "all" is everything available,
	// which is currently the same pool.
	for _, hw := range hwParams {
		pool = append(pool, NewHoltWinters(hw.alpha, hw.beta, hw.gamma, seasonalPeriod))
	}
	for _, o := range arimaOrders {
		pool = append(pool, NewARIMA(o[0], o[1], o[2]))
	}
	return pool
}

type hwVariant struct {
	alpha, beta, gamma float64
}

// FallbackCandidates is the small, fixed, always-available model set used by
// the fallback training tier.
func FallbackCandidates() []Forecaster {
	return []Forecaster{
		NewLastValueNaive(),
		NewAverageValueNaive(),
		NewETS(0.3),
		NewARIMA(1, 1, 1),
	}
}

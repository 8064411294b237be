// Package ensemble implements the candidate forecasting models and the
// training machinery that scores them: backwards-chaining validation over
// held-out recent windows, simple ensembling of top performers, and forecast
// constraints.
package ensemble

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// ZeroesNaiveName is the degenerate "always predict zero" baseline. A training
// run won by this model is not a genuine success.
const ZeroesNaiveName = "ZeroesNaive"

// minTrainPoints is the smallest training slice a validation fold may use.
const minTrainPoints = 4

// Forecaster produces a fixed-horizon forecast from a cleaned value series.
type Forecaster interface {
	Name() string
	Forecast(values []float64, horizon int) ([]float64, error)
}

// Config controls one training run.
type Config struct {
	Horizon         int
	CandidateSet    models.CandidateSet
	Generations     int
	ValidationFolds int
	// Ensemble averages the top performers instead of using the single best
	// model's forecast.
	Ensemble bool
	// NoNegatives clamps forecast values at zero.
	NoNegatives bool
	// GrowthConstraint caps forecast values at this multiple of the recent
	// historical magnitude; zero or negative disables the cap.
	GrowthConstraint float64
	// SeasonalPeriod feeds the seasonal candidates. Defaults to 12 (monthly
	// data with yearly seasonality).
	SeasonalPeriod int
}

// ModelScore is one candidate's cross-validation score. Lower is better.
type ModelScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Result is the tagged outcome of a training run. Degenerate results are
// reported explicitly instead of being discovered by the caller through
// introspection.
type Result struct {
	ForecastValues []float64
	BestModelName  string
	BestScore      float64
	// Degenerate is set when the zero baseline out-scored every real model.
	Degenerate bool
	Scores     []ModelScore
}

// Train scores every candidate in the configured set with backwards-chaining
// validation, then produces the final forecast from the winner (or a simple
// average of the top performers when ensembling is on).
func Train(values []float64, cfg Config) (*Result, error) {
	period := cfg.SeasonalPeriod
	if period <= 0 {
		period = 12
	}
	return TrainWithCandidates(values, Candidates(cfg.CandidateSet, cfg.Generations, period), cfg)
}

// TrainWithCandidates runs the same scoring and selection over an explicit
// candidate pool. The fallback tier uses it with its small fixed set.
func TrainWithCandidates(values []float64, candidates []Forecaster, cfg Config) (*Result, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty series")
	}
	if cfg.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", cfg.Horizon)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("empty candidate pool")
	}
	period := cfg.SeasonalPeriod
	if period <= 0 {
		period = 12
	}

	scores := scoreCandidates(candidates, values, cfg)
	if len(scores) == 0 {
		return nil, fmt.Errorf("no candidate model could be validated on %d points", len(values))
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score < scores[j].Score })

	best := scores[0]
	result := &Result{
		BestModelName: best.Name,
		BestScore:     best.Score,
		Degenerate:    strings.HasPrefix(best.Name, ZeroesNaiveName),
		Scores:        scoresOnly(scores),
	}

	forecast, name, err := finalForecast(candidates, scores, values, cfg)
	if err != nil {
		return nil, err
	}
	result.BestModelName = name
	applyConstraints(forecast, values, cfg, period)
	result.ForecastValues = forecast
	return result, nil
}

type scoredCandidate struct {
	Name  string
	Score float64
	Folds int
}

// scoreCandidates runs backwards-chaining validation for every candidate.
// Candidates that cannot be evaluated on any fold are dropped.
func scoreCandidates(candidates []Forecaster, values []float64, cfg Config) []scoredCandidate {
	folds := cfg.ValidationFolds
	if folds < 1 {
		folds = 1
	}
	holdout := holdoutLength(len(values), cfg.Horizon, folds)
	if holdout == 0 {
		return nil
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		total := 0.0
		evaluated := 0
		// Oldest fold first; held-out windows are always the most recent
		// segments of their fold and are never shuffled.
		for k := folds; k >= 1; k-- {
			cut := len(values) - holdout*k
			if cut < minTrainPoints {
				continue
			}
			train := values[:cut]
			test := values[cut : cut+holdout]
			predicted, err := c.Forecast(train, holdout)
			if err != nil || len(predicted) != holdout {
				continue
			}
			total += rmse(test, predicted)
			evaluated++
		}
		if evaluated == 0 {
			continue
		}
		scored = append(scored, scoredCandidate{Name: c.Name(), Score: total / float64(evaluated), Folds: evaluated})
	}
	return scored
}

// holdoutLength picks the validation window. It starts at the forecast
// horizon and shrinks when the series is too short to hold out that much per
// fold while keeping a usable training slice.
func holdoutLength(n, horizon, folds int) int {
	h := horizon
	if n-h*folds < minTrainPoints {
		h = (n - minTrainPoints) / folds
	}
	if h < 1 {
		if n > minTrainPoints {
			return 1
		}
		return 0
	}
	return h
}

// finalForecast refits the winning model (or the top performers, when
// ensembling) on the full series.
func finalForecast(candidates []Forecaster, scores []scoredCandidate, values []float64, cfg Config) ([]float64, string, error) {
	byName := make(map[string]Forecaster, len(candidates))
	for _, c := range candidates {
		byName[c.Name()] = c
	}

	topN := 1
	if cfg.Ensemble {
		topN = 3
		if len(scores) < topN {
			topN = len(scores)
		}
	}

	forecasts := make([][]float64, 0, topN)
	names := make([]string, 0, topN)
	for _, s := range scores {
		if len(forecasts) == topN {
			break
		}
		f, err := byName[s.Name].Forecast(values, cfg.Horizon)
		if err != nil || len(f) != cfg.Horizon {
			continue
		}
		forecasts = append(forecasts, f)
		names = append(names, s.Name)
	}
	if len(forecasts) == 0 {
		return nil, "", fmt.Errorf("no scored model produced a forecast on the full series")
	}

	if len(forecasts) == 1 {
		return forecasts[0], names[0], nil
	}

	averaged := make([]float64, cfg.Horizon)
	for _, f := range forecasts {
		for i, v := range f {
			averaged[i] += v
		}
	}
	for i := range averaged {
		averaged[i] /= float64(len(forecasts))
	}
	return averaged, fmt.Sprintf("Ensemble(%s)", strings.Join(names, ", ")), nil
}

// applyConstraints enforces non-negativity and the bounded-growth cap on the
// final forecast values.
func applyConstraints(forecast, historical []float64, cfg Config, period int) {
	var limit float64
	if cfg.GrowthConstraint > 0 {
		recent := historical
		if len(recent) > period {
			recent = recent[len(recent)-period:]
		}
		for _, v := range recent {
			if a := math.Abs(v); a > limit {
				limit = a
			}
		}
		limit *= cfg.GrowthConstraint
	}
	for i, v := range forecast {
		if cfg.NoNegatives && v < 0 {
			v = 0
		}
		if cfg.GrowthConstraint > 0 && v > limit {
			v = limit
		}
		forecast[i] = v
	}
}

func scoresOnly(scored []scoredCandidate) []ModelScore {
	out := make([]ModelScore, len(scored))
	for i, s := range scored {
		out[i] = ModelScore{Name: s.Name, Score: s.Score}
	}
	return out
}

func rmse(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

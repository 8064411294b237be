package forecast

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/prognoz-ai/prognoz-go/internal/forecast/ensemble"
	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// TrainerState tracks where a training run is in its fallback chain.
type TrainerState string

const (
	StateNotStarted         TrainerState = "not_started"
	StatePrimaryTraining    TrainerState = "primary_training"
	StatePrimaryFailed      TrainerState = "primary_failed"
	StateFallbackTraining   TrainerState = "fallback_training"
	StateFallbackFailed     TrainerState = "fallback_failed"
	StateTrendExtrapolation TrainerState = "trend_extrapolation"
	StateSucceeded          TrainerState = "succeeded"
	StateFailed             TrainerState = "failed"
)

// growthConstraint bounds primary-tier forecasts to twice the recent
// historical magnitude.
const growthConstraint = 2.0

// Trainer runs the three-tier fallback chain over one prepared series:
// the full candidate ensemble first, then a small fixed model set, then a
// closed-form trend extrapolation. Each trainer instance serves exactly one
// training attempt and owns its series for that attempt's lifetime.
type Trainer struct {
	profile   models.TrainingProfile
	tier      models.ComplexityTier
	horizon   int
	logger    *logrus.Logger
	state     TrainerState
	// historical is retained so the trend tier has data even when both
	// training tiers fail.
	historical *models.PreparedSeries
}

// NewTrainer creates a trainer for a single run.
func NewTrainer(profile models.TrainingProfile, tier models.ComplexityTier, horizon int, logger *logrus.Logger) *Trainer {
	return &Trainer{
		profile: profile,
		tier:    tier,
		horizon: horizon,
		logger:  logger,
		state:   StateNotStarted,
	}
}

// State returns the trainer's current position in the fallback chain.
func (t *Trainer) State() TrainerState { return t.state }

// Run walks the fallback chain until some tier produces a forecast. Training
// errors at the primary and fallback tiers are absorbed and logged; they
// trigger the next tier, never the caller. The only hard failure is a series
// with no usable historical data at all.
func (t *Trainer) Run(ctx context.Context, series *models.PreparedSeries) (models.ForecastSeries, models.ForecastMetadata, error) {
	if series.Len() == 0 {
		t.state = StateFailed
		return nil, models.ForecastMetadata{}, ErrNoHistoricalData
	}
	t.historical = series.Clone()

	meta := models.ForecastMetadata{
		ComplexityTier:  t.tier,
		ForecastHorizon: t.horizon,
		Frequency:       series.Frequency,
		Generations:     t.profile.Generations,
		ValidationFolds: t.profile.ValidationFolds,
	}

	t.state = StatePrimaryTraining
	if forecast, err := t.trainPrimary(ctx, &meta); err == nil {
		t.state = StateSucceeded
		return forecast, meta, nil
	} else {
		t.logger.WithError(err).WithFields(logrus.Fields{
			"candidate_set": t.profile.CandidateSet,
			"data_points":   t.historical.Len(),
		}).Warn("Primary training failed, trying simplified model set")
		t.state = StatePrimaryFailed
	}

	t.state = StateFallbackTraining
	if forecast, err := t.trainFallback(ctx, &meta); err == nil {
		t.state = StateSucceeded
		return forecast, meta, nil
	} else {
		t.logger.WithError(err).Warn("Fallback training failed, degrading to trend extrapolation")
		t.state = StateFallbackFailed
	}

	t.state = StateTrendExtrapolation
	forecast, err := ExtrapolateTrend(t.historical, t.horizon)
	if err != nil {
		t.state = StateFailed
		return nil, meta, err
	}
	meta.Strategy = models.StrategyTrendExtrapolation
	meta.BestModelName = TrendModelName
	meta.BestScore = nil
	meta.ModelsEvaluated = 0
	t.state = StateSucceeded
	return forecast, meta, nil
}

// trainPrimary fits the full candidate ensemble selected for this run. A run
// won by the degenerate zero baseline is a failure no matter what the scoring
// says.
func (t *Trainer) trainPrimary(ctx context.Context, meta *models.ForecastMetadata) (models.ForecastSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := ensemble.Train(t.historical.Values, ensemble.Config{
		Horizon:          t.horizon,
		CandidateSet:     t.profile.CandidateSet,
		Generations:      t.profile.Generations,
		ValidationFolds:  t.profile.ValidationFolds,
		Ensemble:         true,
		NoNegatives:      true,
		GrowthConstraint: growthConstraint,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPrimaryTrainingFailed, err)
	}
	if result.Degenerate {
		return nil, fmt.Errorf("%w: zero baseline won the candidate search", errPrimaryTrainingFailed)
	}

	meta.Strategy = models.StrategyPrimary
	meta.BestModelName = result.BestModelName
	meta.BestScore = &result.BestScore
	meta.ModelsEvaluated = len(result.Scores)

	t.logger.WithFields(logrus.Fields{
		"best_model":   result.BestModelName,
		"best_score":   result.BestScore,
		"models_tried": len(result.Scores),
	}).Info("Primary training succeeded")

	return t.toSeries(result.ForecastValues), nil
}

// trainFallback retries with the small always-available model set: minimal
// validation, no ensembling. The best model name is suffixed so callers can
// tell the result is degraded. The degeneracy check applies here too; the
// zero baseline is simply never part of the fallback set, so the outcome is
// uniform across tiers.
func (t *Trainer) trainFallback(ctx context.Context, meta *models.ForecastMetadata) (models.ForecastSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := ensemble.TrainWithCandidates(t.historical.Values, ensemble.FallbackCandidates(), ensemble.Config{
		Horizon:         t.horizon,
		Generations:     1,
		ValidationFolds: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errFallbackTrainingFailed, err)
	}
	if result.Degenerate {
		return nil, fmt.Errorf("%w: zero baseline won the simplified search", errFallbackTrainingFailed)
	}

	meta.Strategy = models.StrategyFallbackSimple
	meta.BestModelName = result.BestModelName + " (fallback)"
	meta.BestScore = &result.BestScore
	meta.ModelsEvaluated = len(result.Scores)

	t.logger.WithFields(logrus.Fields{
		"best_model": result.BestModelName,
		"best_score": result.BestScore,
	}).Info("Fallback training succeeded")

	return t.toSeries(result.ForecastValues), nil
}

func (t *Trainer) toSeries(values []float64) models.ForecastSeries {
	dates := FutureDates(t.historical.LastDate(), t.historical.Frequency, t.horizon)
	out := make(models.ForecastSeries, len(values))
	for i, v := range values {
		out[i] = models.ForecastPoint{Date: dates[i], Value: v}
	}
	return out
}

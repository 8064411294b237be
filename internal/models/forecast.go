package models

// Strategy identifies which training tier produced a forecast.
type Strategy string

const (
	StrategyPrimary            Strategy = "primary"
	StrategyFallbackSimple     Strategy = "fallback_simple"
	StrategyTrendExtrapolation Strategy = "trend_extrapolation"
)

// ForecastMetadata carries the provenance of a forecast run so callers can
// tell a full ensemble result from a degraded one.
type ForecastMetadata struct {
	Strategy        Strategy       `json:"strategy_used"`
	BestModelName   string         `json:"best_model_name"`
	ComplexityTier  ComplexityTier `json:"complexity_tier"`
	ForecastHorizon int            `json:"forecast_horizon"`
	Frequency       Frequency      `json:"frequency"`
	BestScore       *float64       `json:"best_score,omitempty"`
	ModelsEvaluated int            `json:"models_evaluated,omitempty"`
	Generations     int            `json:"generations,omitempty"`
	ValidationFolds int            `json:"validation_folds,omitempty"`
}

// Degraded reports whether the forecast came from anything below the primary
// tier.
func (m ForecastMetadata) Degraded() bool {
	return m.Strategy != StrategyPrimary
}

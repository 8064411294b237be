package forecast

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/prognoz-ai/prognoz-go/internal/config"
	"github.com/prognoz-ai/prognoz-go/internal/logging"
	"github.com/prognoz-ai/prognoz-go/internal/models"
	"github.com/prognoz-ai/prognoz-go/internal/telemetry"
)

// Request describes one forecast run over a raw series.
type Request struct {
	Series     models.RawSeries
	ValueField string
	DateField  string
	Tier       models.ComplexityTier
	Horizon    int
}

// Result is what a completed run hands back to the transport layer.
type Result struct {
	Historical *models.PreparedSeries
	Forecast   models.ForecastSeries
	Metadata   models.ForecastMetadata
}

// Service wires preparation, profile selection and the fallback trainer
// into a single entry point.
type Service struct {
	preparer *Preparer
	logger   *logrus.Logger
	tracer   trace.Tracer

	defaultHorizon int
	maxHorizon     int
}

func NewService(cfg config.ForecastConfig, logger *logrus.Logger) *Service {
	preparer := NewPreparer()
	if cfg.MinDataPoints > 0 {
		preparer.MinDataPoints = cfg.MinDataPoints
	}
	return &Service{
		preparer:       preparer,
		logger:         logger,
		tracer:         telemetry.Tracer("forecast"),
		defaultHorizon: cfg.DefaultHorizon,
		maxHorizon:     cfg.MaxHorizon,
	}
}

// CreateForecast runs the full pipeline: prepare the raw series, pick a
// training profile for its length, then walk the trainer's fallback chain.
// Preparation errors are returned as-is so handlers can map them to precise
// client responses.
func (s *Service) CreateForecast(ctx context.Context, req Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "forecast.create",
		trace.WithAttributes(
			attribute.String("forecast.tier", string(req.Tier)),
			attribute.Int("forecast.horizon", req.Horizon),
		))
	defer span.End()

	horizon := s.clampHorizon(req.Horizon)
	tier := req.Tier
	if !tier.Valid() {
		tier = models.TierSimple
	}

	prepared, err := s.preparer.Prepare(req.Series, req.ValueField, req.DateField)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	profile := SelectProfile(tier, prepared.Len())
	span.SetAttributes(
		attribute.Int("forecast.data_points", prepared.Len()),
		attribute.String("forecast.candidate_set", string(profile.CandidateSet)),
	)

	started := time.Now()
	trainer := NewTrainer(profile, tier, horizon, s.logger)
	forecast, meta, err := trainer.Run(ctx, prepared)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logging.LogForecastRun(s.logger, string(meta.Strategy), meta.BestModelName,
		prepared.Len(), horizon, time.Since(started))

	return &Result{
		Historical: prepared,
		Forecast:   forecast,
		Metadata:   meta,
	}, nil
}

func (s *Service) clampHorizon(horizon int) int {
	if horizon <= 0 {
		if s.defaultHorizon > 0 {
			return s.defaultHorizon
		}
		return 12
	}
	if s.maxHorizon > 0 && horizon > s.maxHorizon {
		return s.maxHorizon
	}
	return horizon
}

// DefaultHorizon exposes the configured fallback horizon for handlers.
func (s *Service) DefaultHorizon() int {
	if s.defaultHorizon > 0 {
		return s.defaultHorizon
	}
	return 12
}

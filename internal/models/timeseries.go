package models

import (
	"time"
)

// Frequency identifies the spacing of points in a time series. The values
// mirror the period aliases used by the data providers ("ME" for month-end
// monthly data, "D" for daily data).
type Frequency string

const (
	FrequencyMonthly Frequency = "ME"
	FrequencyDaily   Frequency = "D"
)

// ComplexityTier is the user-facing knob trading training thoroughness for
// speed.
type ComplexityTier string

const (
	TierSimple  ComplexityTier = "simple"
	TierMedium  ComplexityTier = "medium"
	TierComplex ComplexityTier = "complex"
	TierAll     ComplexityTier = "all"
)

// Valid reports whether the tier is one of the supported values.
func (t ComplexityTier) Valid() bool {
	switch t {
	case TierSimple, TierMedium, TierComplex, TierAll:
		return true
	}
	return false
}

// CandidateSet identifies a pool of forecasting models eligible for selection.
type CandidateSet string

const (
	CandidateSetSuperfast CandidateSet = "superfast"
	CandidateSetFast      CandidateSet = "fast"
	CandidateSetDefault   CandidateSet = "default"
	CandidateSetAll       CandidateSet = "all"
)

// TrainingProfile describes how much effort the trainer spends on a run.
// It is derived deterministically from the complexity tier and data length.
type TrainingProfile struct {
	CandidateSet    CandidateSet `json:"candidate_model_set"`
	Generations     int          `json:"generations"`
	ValidationFolds int          `json:"validation_folds"`
}

// RawRecord is a single observation as delivered by a provider, keyed by
// column name. Values are dynamically typed the way provider payloads are:
// dates arrive as time.Time or string, numeric fields as float64, int or nil.
type RawRecord map[string]interface{}

// RawSeries is an unvalidated series straight from a provider client.
type RawSeries struct {
	Records   []RawRecord `json:"records"`
	Frequency Frequency   `json:"frequency"`
}

// PreparedSeries is a cleaned single-column series ready for modeling: sorted
// ascending, unique timestamps, no missing values. A prepared series is owned
// by exactly one training attempt and must not be mutated once handed over.
type PreparedSeries struct {
	Dates     []time.Time
	Values    []float64
	Frequency Frequency
}

// Len returns the number of points in the series.
func (s *PreparedSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}

// Clone returns a deep copy so a consumer can keep the series past the
// lifetime of the training attempt that produced it.
func (s *PreparedSeries) Clone() *PreparedSeries {
	if s == nil {
		return nil
	}
	c := &PreparedSeries{
		Dates:     make([]time.Time, len(s.Dates)),
		Values:    make([]float64, len(s.Values)),
		Frequency: s.Frequency,
	}
	copy(c.Dates, s.Dates)
	copy(c.Values, s.Values)
	return c
}

// LastDate returns the most recent timestamp in the series.
func (s *PreparedSeries) LastDate() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.Dates[len(s.Dates)-1]
}

// ForecastPoint is a single predicted observation.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ForecastSeries is the produced forecast: exactly the requested horizon,
// timestamps contiguous at the series frequency starting one period after the
// last historical timestamp.
type ForecastSeries []ForecastPoint

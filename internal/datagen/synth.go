package datagen

import (
	"math"
	"math/rand"
	"time"
)

// minPeriodMonths is the floor applied to every requested history window.
// Shorter windows starve the trainer of validation folds.
const minPeriodMonths = 12

// shape controls the deterministic components layered on a base level.
type shape struct {
	// trendFraction is the total growth over the window as a fraction of
	// the base level.
	trendFraction float64
	// seasonalFraction scales the sine seasonality component.
	seasonalFraction float64
	// noiseFraction is the standard deviation of the gaussian noise.
	noiseFraction float64
}

// monthEnds returns the last day of each of the n months ending at the
// month containing ref.
func monthEnds(ref time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	y, m, _ := ref.Date()
	// Last day of month k is day zero of month k+1.
	anchor := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		dates[i] = anchor
		y, m, _ = anchor.Date()
		anchor = time.Date(y, m, 0, 0, 0, 0, 0, time.UTC)
	}
	return dates
}

// synthesize builds n observations around base: a linear trend from zero to
// trendFraction of base, a two-cycle sine seasonality, and gaussian noise.
// Values are truncated to whole currency units.
func synthesize(rng *rand.Rand, base float64, n int, s shape) []float64 {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		pos := 0.0
		if n > 1 {
			pos = float64(i) / float64(n-1)
		}
		trend := base * s.trendFraction * pos
		seasonal := base * s.seasonalFraction * math.Sin(4*math.Pi*pos)
		noise := rng.NormFloat64() * base * s.noiseFraction
		values[i] = math.Trunc(base + trend + seasonal + noise)
	}
	return values
}

func clampPeriod(periodMonths int) int {
	if periodMonths < minPeriodMonths {
		return minPeriodMonths
	}
	return periodMonths
}

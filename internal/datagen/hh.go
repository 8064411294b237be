package datagen

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// Base monthly salaries per programming language in rubles. Lookup is
// case insensitive; unknown languages fall back to defaultBaseSalary.
var baseSalaries = map[string]float64{
	"python":     120_000,
	"java":       130_000,
	"c#":         110_000,
	"javascript": 115_000,
	"golang":     140_000,
	"rust":       150_000,
}

const defaultBaseSalary = 100_000

// HHClient produces salary history by programming language, mirroring the
// shape of hh.ru vacancy statistics.
type HHClient struct {
	token    string
	baseURL  string
	demoMode bool
	logger   *logrus.Logger
	rng      *rand.Rand
	now      func() time.Time
}

type HHOption func(*HHClient)

func WithHHClock(now func() time.Time) HHOption {
	return func(c *HHClient) { c.now = now }
}

func WithHHSeed(seed int64) HHOption {
	return func(c *HHClient) { c.rng = rand.New(rand.NewSource(seed)) }
}

func NewHHClient(token, baseURL string, demoMode bool, logger *logrus.Logger, opts ...HHOption) *HHClient {
	c := &HHClient{
		token:    token,
		baseURL:  baseURL,
		demoMode: demoMode,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HHClient) authorized() bool {
	return c.demoMode || c.token != ""
}

// GetSalaryData returns monthly salary observations for a programming
// language over at least the last 12 months, oldest first.
func (c *HHClient) GetSalaryData(ctx context.Context, language string, periodMonths int) (models.RawSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.RawSeries{}, err
	}
	if !c.authorized() {
		return models.RawSeries{}, ErrInvalidToken
	}

	n := clampPeriod(periodMonths)
	base, ok := baseSalaries[strings.ToLower(language)]
	if !ok {
		base = defaultBaseSalary
	}

	dates := monthEnds(c.now(), n)
	salaries := synthesize(c.rng, base, n, shape{
		trendFraction:    0.15,
		seasonalFraction: 0.03,
		noiseFraction:    0.02,
	})

	records := make([]models.RawRecord, n)
	for i := range records {
		records[i] = models.RawRecord{
			"date":     dates[i],
			"salary":   salaries[i],
			"language": language,
		}
	}

	c.logger.WithFields(logrus.Fields{
		"provider": "hh",
		"language": language,
		"months":   n,
	}).Debug("Generated salary history")

	return models.RawSeries{Records: records, Frequency: models.FrequencyMonthly}, nil
}

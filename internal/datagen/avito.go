package datagen

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// ErrInvalidToken is returned when a provider client is asked to fetch data
// without a usable access token.
var ErrInvalidToken = errors.New("provider token is missing or invalid")

// DemoToken is always accepted so the dashboard works without real
// provider credentials.
const DemoToken = "demo"

// Base apartment prices per region in rubles. Unknown regions fall back
// to defaultBasePrice.
var basePrices = map[string]float64{
	"Москва":          8_000_000,
	"Санкт-Петербург": 6_000_000,
	"Новосибирск":     4_000_000,
	"Екатеринбург":    4_500_000,
	"Казань":          4_200_000,
}

const defaultBasePrice = 4_000_000

// roomModifiers scales the regional base by apartment size.
var roomModifiers = map[string]float64{
	"1":  0.9,
	"2":  1.0,
	"3":  1.2,
	"4+": 1.5,
}

// AvitoClient produces apartment price history. Real estate listings APIs
// are paid and rate limited, so outside of production the client synthesizes
// a realistic series instead of calling out.
type AvitoClient struct {
	token    string
	baseURL  string
	demoMode bool
	logger   *logrus.Logger
	rng      *rand.Rand
	now      func() time.Time
}

// AvitoOption customizes client construction.
type AvitoOption func(*AvitoClient)

// WithAvitoClock overrides the reference clock. Tests use it to pin the
// generated date range.
func WithAvitoClock(now func() time.Time) AvitoOption {
	return func(c *AvitoClient) { c.now = now }
}

// WithAvitoSeed makes the noise component reproducible.
func WithAvitoSeed(seed int64) AvitoOption {
	return func(c *AvitoClient) { c.rng = rand.New(rand.NewSource(seed)) }
}

func NewAvitoClient(token, baseURL string, demoMode bool, logger *logrus.Logger, opts ...AvitoOption) *AvitoClient {
	c := &AvitoClient{
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

func (c *AvitoClient) authorized() bool {
	return c.demoMode || c.token != ""
}

// GetApartmentPrices returns monthly apartment prices for a region and room
// count, covering at least the last 12 months. Dates are month ends, oldest
// first.
func (c *AvitoClient) GetApartmentPrices(ctx context.Context, region, rooms string, periodMonths int) (models.RawSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.RawSeries{}, err
	}
	if !c.authorized() {
		return models.RawSeries{}, ErrInvalidToken
	}

	n := clampPeriod(periodMonths)
	base, ok := basePrices[region]
	if !ok {
		base = defaultBasePrice
	}
	mod, ok := roomModifiers[rooms]
	if !ok {
		mod = 1.0
	}
	base *= mod

	dates := monthEnds(c.now(), n)
	prices := synthesize(c.rng, base, n, shape{
		trendFraction:    0.20,
		seasonalFraction: 0.05,
		noiseFraction:    0.02,
	})

	records := make([]models.RawRecord, n)
	for i := range records {
		records[i] = models.RawRecord{
			"date":   dates[i],
			"price":  prices[i],
			"region": region,
			"rooms":  rooms,
		}
	}

	c.logger.WithFields(logrus.Fields{
		"provider": "avito",
		"region":   region,
		"rooms":    rooms,
		"months":   n,
	}).Debug("Generated apartment price history")

	return models.RawSeries{Records: records, Frequency: models.FrequencyMonthly}, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/prognoz-ai/prognoz-go/internal/auth"
	"github.com/prognoz-ai/prognoz-go/internal/database"
	"github.com/prognoz-ai/prognoz-go/internal/datagen"
	"github.com/prognoz-ai/prognoz-go/internal/export"
	"github.com/prognoz-ai/prognoz-go/internal/forecast"
	"github.com/prognoz-ai/prognoz-go/internal/middleware"
	"github.com/prognoz-ai/prognoz-go/internal/models"
	"github.com/prognoz-ai/prognoz-go/internal/monitor"
)

// ApartmentPriceSource fetches apartment price history.
type ApartmentPriceSource interface {
	GetApartmentPrices(ctx context.Context, region, rooms string, periodMonths int) (models.RawSeries, error)
}

// SalarySource fetches salary history.
type SalarySource interface {
	GetSalaryData(ctx context.Context, language string, periodMonths int) (models.RawSeries, error)
}

// Provider factories bind a per-session API token to a client.
type (
	AvitoFactory func(token string) ApartmentPriceSource
	HHFactory    func(token string) SalarySource
)

// ForecastHandler serves forecast creation and CSV export.
type ForecastHandler struct {
	service  *forecast.Service
	sessions *auth.SessionStore
	cache    *database.RedisClient
	cacheTTL time.Duration
	monitor  *monitor.Monitor
	avito    AvitoFactory
	hh       HHFactory
	logger   *logrus.Logger
}

func NewForecastHandler(
	service *forecast.Service,
	sessions *auth.SessionStore,
	cache *database.RedisClient,
	cacheTTL time.Duration,
	mon *monitor.Monitor,
	avito AvitoFactory,
	hh HHFactory,
	logger *logrus.Logger,
) *ForecastHandler {
	return &ForecastHandler{
		service:  service,
		sessions: sessions,
		cache:    cache,
		cacheTTL: cacheTTL,
		monitor:  mon,
		avito:    avito,
		hh:       hh,
		logger:   logger,
	}
}

type ApartmentForecastRequest struct {
	Region       string `json:"region" binding:"required"`
	Rooms        string `json:"rooms"`
	PeriodMonths int    `json:"period_months"`
	Complexity   string `json:"complexity"`
	Horizon      int    `json:"horizon"`
}

type SalaryForecastRequest struct {
	Language     string `json:"language" binding:"required"`
	PeriodMonths int    `json:"period_months"`
	Complexity   string `json:"complexity"`
	Horizon      int    `json:"horizon"`
}

type ExportRequest struct {
	Kind         string `json:"kind" binding:"required"`
	Locale       string `json:"locale"`
	Region       string `json:"region"`
	Rooms        string `json:"rooms"`
	Language     string `json:"language"`
	PeriodMonths int    `json:"period_months"`
	Complexity   string `json:"complexity"`
	Horizon      int    `json:"horizon"`
}

type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Summary carries the headline numbers the dashboard shows above the chart.
// Values are decimal strings so the frontend never re-rounds floats.
type Summary struct {
	HistoricalLast string `json:"historical_last"`
	ForecastMin    string `json:"forecast_min"`
	ForecastMax    string `json:"forecast_max"`
	ForecastMean   string `json:"forecast_mean"`
	ChangePercent  string `json:"change_percent"`
}

type ForecastResponse struct {
	Historical []SeriesPoint           `json:"historical"`
	Forecast   []SeriesPoint           `json:"forecast"`
	Metadata   models.ForecastMetadata `json:"metadata"`
	Summary    Summary                 `json:"summary"`
}

// CreateApartmentForecast trains a model over apartment price history and
// returns the forecast with summary statistics.
func (h *ForecastHandler) CreateApartmentForecast(c *gin.Context) {
	var req ApartmentForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	tier, ok := parseTier(req.Complexity)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown complexity tier"})
		return
	}

	cacheKey := fmt.Sprintf("forecast:apartments:%s:%s:%d:%s:%d",
		req.Region, req.Rooms, req.PeriodMonths, tier, req.Horizon)
	if h.serveCached(c, cacheKey) {
		return
	}

	resp, status, err := h.runApartmentForecast(c, req, tier)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.storeCached(c.Request.Context(), cacheKey, resp)
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, resp)
}

// CreateSalaryForecast trains a model over salary history by programming
// language.
func (h *ForecastHandler) CreateSalaryForecast(c *gin.Context) {
	var req SalaryForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	tier, ok := parseTier(req.Complexity)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown complexity tier"})
		return
	}

	cacheKey := fmt.Sprintf("forecast:salaries:%s:%d:%s:%d",
		req.Language, req.PeriodMonths, tier, req.Horizon)
	if h.serveCached(c, cacheKey) {
		return
	}

	resp, status, err := h.runSalaryForecast(c, req, tier)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.storeCached(c.Request.Context(), cacheKey, resp)
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, resp)
}

// ExportForecast runs a forecast and streams it back as a CSV attachment.
func (h *ForecastHandler) ExportForecast(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	tier, ok := parseTier(req.Complexity)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown complexity tier"})
		return
	}

	var (
		resp   *ForecastResponse
		status int
		err    error
		kind   export.Kind
	)
	switch export.Kind(req.Kind) {
	case export.KindApartments:
		kind = export.KindApartments
		if req.Region == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "region is required for apartment exports"})
			return
		}
		resp, status, err = h.runApartmentForecast(c, ApartmentForecastRequest{
			Region:       req.Region,
			Rooms:        req.Rooms,
			PeriodMonths: req.PeriodMonths,
			Horizon:      req.Horizon,
		}, tier)
	case export.KindSalaries:
		kind = export.KindSalaries
		if req.Language == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "language is required for salary exports"})
			return
		}
		resp, status, err = h.runSalaryForecast(c, SalaryForecastRequest{
			Language:     req.Language,
			PeriodMonths: req.PeriodMonths,
			Horizon:      req.Horizon,
		}, tier)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown export kind"})
		return
	}
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	series := make(models.ForecastSeries, len(resp.Forecast))
	for i, point := range resp.Forecast {
		date, perr := time.Parse("2006-01-02", point.Date)
		if perr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render export"})
			return
		}
		series[i] = models.ForecastPoint{Date: date, Value: point.Value}
	}

	filename := export.Filename(kind, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if err := export.WriteCSV(c.Writer, series, export.Options{Kind: kind, Locale: req.Locale}); err != nil {
		h.logger.WithError(err).Error("CSV export failed mid-stream")
	}
}

func (h *ForecastHandler) runApartmentForecast(c *gin.Context, req ApartmentForecastRequest, tier models.ComplexityTier) (*ForecastResponse, int, error) {
	if !h.monitor.AcquireRun() {
		return nil, http.StatusServiceUnavailable, errors.New("training capacity exhausted, retry shortly")
	}
	defer h.monitor.ReleaseRun()

	ctx := c.Request.Context()
	source := h.avito(h.sessionToken(ctx, c, "avito"))

	raw, err := source.GetApartmentPrices(ctx, req.Region, req.Rooms, req.PeriodMonths)
	if err != nil {
		if errors.Is(err, datagen.ErrInvalidToken) {
			return nil, http.StatusForbidden, errors.New("Avito API token is missing or invalid")
		}
		h.logger.WithError(err).Error("Apartment price fetch failed")
		return nil, http.StatusBadGateway, errors.New("failed to fetch apartment prices")
	}

	result, err := h.service.CreateForecast(ctx, forecast.Request{
		Series:     raw,
		ValueField: "price",
		DateField:  "date",
		Tier:       tier,
		Horizon:    req.Horizon,
	})
	if err != nil {
		return nil, forecastErrorStatus(err), err
	}
	return buildResponse(result), http.StatusOK, nil
}

func (h *ForecastHandler) runSalaryForecast(c *gin.Context, req SalaryForecastRequest, tier models.ComplexityTier) (*ForecastResponse, int, error) {
	if !h.monitor.AcquireRun() {
		return nil, http.StatusServiceUnavailable, errors.New("training capacity exhausted, retry shortly")
	}
	defer h.monitor.ReleaseRun()

	ctx := c.Request.Context()
	source := h.hh(h.sessionToken(ctx, c, "hh"))

	raw, err := source.GetSalaryData(ctx, req.Language, req.PeriodMonths)
	if err != nil {
		if errors.Is(err, datagen.ErrInvalidToken) {
			return nil, http.StatusForbidden, errors.New("HH API token is missing or invalid")
		}
		h.logger.WithError(err).Error("Salary fetch failed")
		return nil, http.StatusBadGateway, errors.New("failed to fetch salary data")
	}

	result, err := h.service.CreateForecast(ctx, forecast.Request{
		Series:     raw,
		ValueField: "salary",
		DateField:  "date",
		Tier:       tier,
		Horizon:    req.Horizon,
	})
	if err != nil {
		return nil, forecastErrorStatus(err), err
	}
	return buildResponse(result), http.StatusOK, nil
}

// sessionToken pulls the provider token the user stored on their session.
// A missing session or token falls back to the demo token so demo-mode
// deployments keep working.
func (h *ForecastHandler) sessionToken(ctx context.Context, c *gin.Context, provider string) string {
	username := c.GetString(middleware.ContextUsername)
	session, err := h.sessions.Get(ctx, username)
	if err != nil {
		return datagen.DemoToken
	}
	if token := session.Token(provider); token != "" {
		return token
	}
	return datagen.DemoToken
}

func (h *ForecastHandler) serveCached(c *gin.Context, key string) bool {
	start := time.Now()
	data, err := h.cache.Get(c.Request.Context(), key)
	if err != nil {
		return false
	}
	var resp ForecastResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		return false
	}
	h.logger.WithFields(logrus.Fields{
		"key":         key,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Forecast served from cache")
	c.Header("X-Cache", "HIT")
	c.JSON(http.StatusOK, resp)
	return true
}

func (h *ForecastHandler) storeCached(ctx context.Context, key string, resp *ForecastResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, data, h.cacheTTL); err != nil {
		h.logger.WithError(err).Debug("Failed to cache forecast result")
	}
}

func parseTier(complexity string) (models.ComplexityTier, bool) {
	if complexity == "" {
		return models.TierSimple, true
	}
	tier := models.ComplexityTier(complexity)
	if !tier.Valid() {
		return "", false
	}
	return tier, true
}

// forecastErrorStatus maps pipeline errors onto HTTP statuses: data problems
// are the client's to fix, everything else is ours.
func forecastErrorStatus(err error) int {
	switch {
	case errors.Is(err, forecast.ErrMissingColumn),
		errors.Is(err, forecast.ErrInvalidDate),
		errors.Is(err, forecast.ErrInsufficientData),
		errors.Is(err, forecast.ErrNoHistoricalData):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func buildResponse(result *forecast.Result) *ForecastResponse {
	historical := make([]SeriesPoint, result.Historical.Len())
	for i := range result.Historical.Dates {
		historical[i] = SeriesPoint{
			Date:  result.Historical.Dates[i].Format("2006-01-02"),
			Value: result.Historical.Values[i],
		}
	}

	forecastPoints := make([]SeriesPoint, len(result.Forecast))
	for i, point := range result.Forecast {
		forecastPoints[i] = SeriesPoint{
			Date:  point.Date.Format("2006-01-02"),
			Value: point.Value,
		}
	}

	return &ForecastResponse{
		Historical: historical,
		Forecast:   forecastPoints,
		Metadata:   result.Metadata,
		Summary:    buildSummary(result),
	}
}

// buildSummary computes headline stats with decimal arithmetic so the JSON
// carries exact two-place values.
func buildSummary(result *forecast.Result) Summary {
	if len(result.Forecast) == 0 || result.Historical.Len() == 0 {
		return Summary{}
	}

	last := decimal.NewFromFloat(result.Historical.Values[result.Historical.Len()-1])

	min := decimal.NewFromFloat(result.Forecast[0].Value)
	max := min
	sum := decimal.Zero
	for _, point := range result.Forecast {
		v := decimal.NewFromFloat(point.Value)
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
		sum = sum.Add(v)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(result.Forecast))))

	change := decimal.Zero
	if !last.IsZero() {
		final := decimal.NewFromFloat(result.Forecast[len(result.Forecast)-1].Value)
		change = final.Sub(last).Div(last).Mul(decimal.NewFromInt(100))
	}

	return Summary{
		HistoricalLast: last.Round(2).String(),
		ForecastMin:    min.Round(2).String(),
		ForecastMax:    max.Round(2).String(),
		ForecastMean:   mean.Round(2).String(),
		ChangePercent:  change.Round(2).String(),
	}
}

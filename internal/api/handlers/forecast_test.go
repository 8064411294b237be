package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApartmentForecast(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	w := env.do(t, http.MethodPost, "/api/v1/forecasts/apartments", token, gin.H{
		"region":        "Москва",
		"rooms":         "2",
		"period_months": 24,
		"complexity":    "simple",
		"horizon":       6,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	var resp ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Historical, 24)
	assert.Len(t, resp.Forecast, 6)
	assert.NotEmpty(t, resp.Metadata.BestModelName)
	assert.Equal(t, 6, resp.Metadata.ForecastHorizon)
	assert.NotEmpty(t, resp.Summary.ForecastMean)

	for _, point := range resp.Forecast {
		assert.GreaterOrEqual(t, point.Value, 0.0, "primary forecasts are non-negative")
	}
}

func TestApartmentForecastCacheHit(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	body := gin.H{"region": "Казань", "rooms": "1", "period_months": 12, "horizon": 3}

	w := env.do(t, http.MethodPost, "/api/v1/forecasts/apartments", token, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "MISS", w.Header().Get("X-Cache"))
	first := w.Body.String()

	w = env.do(t, http.MethodPost, "/api/v1/forecasts/apartments", token, body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, first, w.Body.String())
}

func TestSalaryForecast(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	w := env.do(t, http.MethodPost, "/api/v1/forecasts/salaries", token, gin.H{
		"language":      "golang",
		"period_months": 18,
		"complexity":    "medium",
		"horizon":       4,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Historical, 18)
	assert.Len(t, resp.Forecast, 4)
}

func TestForecastValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	// Missing region fails binding.
	w := env.do(t, http.MethodPost, "/api/v1/forecasts/apartments", token, gin.H{
		"rooms": "2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown complexity tier.
	w = env.do(t, http.MethodPost, "/api/v1/forecasts/apartments", token, gin.H{
		"region":     "Москва",
		"complexity": "extreme",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "complexity")
}

func TestExportApartmentsCSV(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	w := env.do(t, http.MethodPost, "/api/v1/forecasts/export", token, gin.H{
		"kind":          "apartments",
		"locale":        "ru",
		"region":        "Москва",
		"rooms":         "2",
		"period_months": 24,
		"horizon":       6,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "forecast_apartments_")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 7, "header plus six forecast rows")
	assert.Equal(t, "Дата,Прогнозируемая цена", strings.TrimSpace(lines[0]))
}

func TestExportValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	w := env.do(t, http.MethodPost, "/api/v1/forecasts/export", token, gin.H{
		"kind": "weather",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/forecasts/export", token, gin.H{
		"kind": "apartments",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "region")

	w = env.do(t, http.MethodPost, "/api/v1/forecasts/export", token, gin.H{
		"kind": "salaries",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "language")
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prognoz-ai/prognoz-go/internal/auth"
	"github.com/prognoz-ai/prognoz-go/internal/config"
	"github.com/prognoz-ai/prognoz-go/internal/database"
	"github.com/prognoz-ai/prognoz-go/internal/datagen"
	"github.com/prognoz-ai/prognoz-go/internal/forecast"
	"github.com/prognoz-ai/prognoz-go/internal/middleware"
	"github.com/prognoz-ai/prognoz-go/internal/monitor"
)

// testEnv wires the full handler stack against miniredis and a temp
// credential file.
type testEnv struct {
	router   *gin.Engine
	store    *auth.FileStore
	sessions *auth.SessionStore
	authmw   *middleware.AuthMiddleware
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	redisClient := database.NewRedisClientFromExisting(client)

	store, err := auth.NewFileStore(filepath.Join(t.TempDir(), "users.json"), bcrypt.MinCost)
	require.NoError(t, err)

	sessions := auth.NewSessionStore(redisClient, time.Hour)
	authmw := middleware.NewAuthMiddleware("handler-test-secret")
	mon := monitor.New(2, logger)

	service := forecast.NewService(config.ForecastConfig{
		MinDataPoints:  6,
		DefaultHorizon: 6,
		MaxHorizon:     24,
	}, logger)

	clock := func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	avito := func(token string) ApartmentPriceSource {
		return datagen.NewAvitoClient(token, "", true, logger,
			datagen.WithAvitoClock(clock), datagen.WithAvitoSeed(1))
	}
	hh := func(token string) SalarySource {
		return datagen.NewHHClient(token, "", true, logger,
			datagen.WithHHClock(clock), datagen.WithHHSeed(1))
	}

	forecastHandler := NewForecastHandler(service, sessions, redisClient,
		10*time.Minute, mon, avito, hh, logger)
	userHandler := NewUserHandler(store, sessions, authmw, time.Hour, logger)

	router := gin.New()
	router.GET("/health", NewHealthHandler(redisClient, mon, "test").Health)
	v1 := router.Group("/api/v1")
	users := v1.Group("/users")
	users.POST("/register", userHandler.Register)
	users.POST("/login", userHandler.Login)
	users.POST("/logout", authmw.RequireAuth(), userHandler.Logout)
	users.GET("/profile", authmw.RequireAuth(), userHandler.GetProfile)
	users.PUT("/tokens", authmw.RequireAuth(), userHandler.UpdateTokens)

	catalog := NewCatalogHandler()
	v1.GET("/catalog/regions", authmw.RequireAuth(), catalog.GetRegions)
	v1.GET("/catalog/languages", authmw.RequireAuth(), catalog.GetLanguages)

	forecasts := v1.Group("/forecasts", authmw.RequireAuth())
	forecasts.POST("/apartments", forecastHandler.CreateApartmentForecast)
	forecasts.POST("/salaries", forecastHandler.CreateSalaryForecast)
	forecasts.POST("/export", forecastHandler.ExportForecast)

	return &testEnv{
		router:   router,
		store:    store,
		sessions: sessions,
		authmw:   authmw,
		redis:    mr,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a user and returns a valid JWT for it.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username":         username,
		"password":         "a-strong-password",
		"confirm_password": "a-strong-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"username": username,
		"password": "a-strong-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

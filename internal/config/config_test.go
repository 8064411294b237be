package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper() {
	viper.Reset()
}

func TestLoadDefaults(t *testing.T) {
	resetViper()
	defer resetViper()

	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
	assert.Equal(t, "users.json", cfg.Auth.UsersFile)
	assert.Equal(t, 6, cfg.Forecast.MinDataPoints)
	assert.Equal(t, 12, cfg.Forecast.DefaultHorizon)
	assert.True(t, cfg.Providers.DemoMode)
}

func TestLoadRequiresJWTSecretOutsideDevelopment(t *testing.T) {
	resetViper()
	defer resetViper()

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadAcceptsJWTSecretInProduction(t *testing.T) {
	resetViper()
	defer resetViper()

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "test-secret-for-config-tests")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-for-config-tests", cfg.Security.JWTSecret)
}

func TestLoadRejectsInvalidJWTExpiry(t *testing.T) {
	resetViper()
	defer resetViper()

	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SECURITY_JWT_EXPIRY", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT expiry")
}

func TestLoadRejectsInvalidBcryptCost(t *testing.T) {
	resetViper()
	defer resetViper()

	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SECURITY_BCRYPT_COST", "99")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bcrypt cost")
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{}
	cfg.Security.JWTExpiry = "2h"
	cfg.Forecast.ResultCacheTTL = "5m"

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiryDuration())
	assert.Equal(t, 5*time.Minute, cfg.ResultCacheTTL())

	cfg.Security.JWTExpiry = "garbage"
	cfg.Forecast.ResultCacheTTL = ""
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiryDuration())
	assert.Equal(t, 10*time.Minute, cfg.ResultCacheTTL())
}

package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username":         "alice",
		"password":         "short",
		"confirm_password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username":         "alice",
		"password":         "a-strong-password",
		"confirm_password": "different-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "do not match")
}

func TestRegisterConflict(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "alice")

	w := env.do(t, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username":         "alice",
		"password":         "another-password",
		"confirm_password": "another-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "alice")

	w := env.do(t, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	// Profile works with the issued token.
	w := env.do(t, http.MethodGet, "/api/v1/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	// Store provider tokens on the session.
	w = env.do(t, http.MethodPut, "/api/v1/users/tokens", token, gin.H{
		"avito_token": "real-avito-token",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ConfiguredProviders []string `json:"configured_providers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"avito"}, resp.ConfiguredProviders)

	// Logout destroys the session; token updates now fail.
	w = env.do(t, http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/users/tokens", token, gin.H{
		"hh_token": "x",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users/profile"},
		{http.MethodPut, "/api/v1/users/tokens"},
		{http.MethodGet, "/api/v1/catalog/regions"},
		{http.MethodPost, "/api/v1/forecasts/apartments"},
	} {
		w := env.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestCatalogs(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "alice")

	w := env.do(t, http.MethodGet, "/api/v1/catalog/regions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Москва")
	assert.Contains(t, w.Body.String(), "4+")

	w = env.do(t, http.MethodGet, "/api/v1/catalog/languages", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Golang")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Services.Redis)
}

func TestHealthDegradedWhenRedisDown(t *testing.T) {
	env := newTestEnv(t)
	env.redis.Close()

	w := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

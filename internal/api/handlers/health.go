package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prognoz-ai/prognoz-go/internal/database"
	"github.com/prognoz-ai/prognoz-go/internal/monitor"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
	Training  Training  `json:"training"`
}

type Services struct {
	Redis string `json:"redis"`
}

type Training struct {
	ActiveRuns int `json:"active_runs"`
}

// HealthHandler reports service liveness and dependency status.
type HealthHandler struct {
	redis   *database.RedisClient
	monitor *monitor.Monitor
	version string
}

func NewHealthHandler(redis *database.RedisClient, mon *monitor.Monitor, version string) *HealthHandler {
	return &HealthHandler{redis: redis, monitor: mon, version: version}
}

func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Services:  Services{Redis: "ok"},
		Training:  Training{ActiveRuns: h.monitor.ActiveRuns()},
	}

	if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
		response.Services.Redis = "error"
		response.Status = "degraded"
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

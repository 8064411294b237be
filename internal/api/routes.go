package api

import (
	"github.com/gin-gonic/gin"

	"github.com/prognoz-ai/prognoz-go/internal/api/handlers"
	"github.com/prognoz-ai/prognoz-go/internal/middleware"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Health   *handlers.HealthHandler
	Users    *handlers.UserHandler
	Catalog  *handlers.CatalogHandler
	Forecast *handlers.ForecastHandler
}

// SetupRoutes mounts the HTTP surface. Everything under /api/v1 except
// registration and login requires a valid JWT.
func SetupRoutes(router *gin.Engine, h Handlers, authmw *middleware.AuthMiddleware) {
	router.Use(middleware.Telemetry())

	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/register", h.Users.Register)
			users.POST("/login", h.Users.Login)
			users.POST("/logout", authmw.RequireAuth(), h.Users.Logout)
			users.GET("/profile", authmw.RequireAuth(), h.Users.GetProfile)
			users.PUT("/tokens", authmw.RequireAuth(), h.Users.UpdateTokens)
		}

		catalog := v1.Group("/catalog", authmw.RequireAuth())
		{
			catalog.GET("/regions", h.Catalog.GetRegions)
			catalog.GET("/languages", h.Catalog.GetLanguages)
		}

		forecasts := v1.Group("/forecasts", authmw.RequireAuth())
		{
			forecasts.POST("/apartments", h.Forecast.CreateApartmentForecast)
			forecasts.POST("/salaries", h.Forecast.CreateSalaryForecast)
			forecasts.POST("/export", h.Forecast.ExportForecast)
		}
	}
}

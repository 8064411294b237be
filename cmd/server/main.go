package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/prognoz-ai/prognoz-go/internal/api"
	"github.com/prognoz-ai/prognoz-go/internal/api/handlers"
	"github.com/prognoz-ai/prognoz-go/internal/auth"
	"github.com/prognoz-ai/prognoz-go/internal/config"
	"github.com/prognoz-ai/prognoz-go/internal/database"
	"github.com/prognoz-ai/prognoz-go/internal/datagen"
	"github.com/prognoz-ai/prognoz-go/internal/forecast"
	"github.com/prognoz-ai/prognoz-go/internal/logging"
	"github.com/prognoz-ai/prognoz-go/internal/middleware"
	"github.com/prognoz-ai/prognoz-go/internal/monitor"
	"github.com/prognoz-ai/prognoz-go/internal/telemetry"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	tp, err := telemetry.Init(cfg.Environment, os.Stdout)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	store, err := auth.NewFileStore(cfg.Auth.UsersFile, cfg.Security.BcryptCost)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open user store")
	}

	sessions := auth.NewSessionStore(redis, cfg.JWTExpiryDuration())
	authmw := middleware.NewAuthMiddleware(cfg.Security.JWTSecret)

	mon := monitor.New(0, logger)
	monCtx, monCancel := context.WithCancel(context.Background())
	defer monCancel()
	go mon.Run(monCtx, time.Minute)

	service := forecast.NewService(cfg.Forecast, logger)

	avito := func(token string) handlers.ApartmentPriceSource {
		return datagen.NewAvitoClient(token, cfg.Providers.Avito.BaseURL, cfg.Providers.DemoMode, logger)
	}
	hh := func(token string) handlers.SalarySource {
		return datagen.NewHHClient(token, cfg.Providers.HH.BaseURL, cfg.Providers.DemoMode, logger)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.Handlers{
		Health: handlers.NewHealthHandler(redis, mon, version),
		Users: handlers.NewUserHandler(store, sessions, authmw,
			cfg.JWTExpiryDuration(), logger),
		Catalog: handlers.NewCatalogHandler(),
		Forecast: handlers.NewForecastHandler(service, sessions, redis,
			cfg.ResultCacheTTL(), mon, avito, hh, logger),
	}, authmw)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.LogStartup(logger, telemetry.ServiceName, version, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.LogShutdown(logger, telemetry.ServiceName, "signal received")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

package logging

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process-wide logger. Production gets JSON output
// for log shipping; development keeps the human-readable text formatter.
func NewLogger(logLevel, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(ParseLevel(logLevel))

	if strings.ToLower(environment) == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	return logger
}

// ParseLevel converts a string level to logrus.Level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// LogStartup records the standard startup event.
func LogStartup(logger *logrus.Logger, serviceName, version string, port int) {
	logger.WithFields(logrus.Fields{
		"service": serviceName,
		"version": version,
		"port":    port,
		"event":   "startup",
	}).Info("Application startup")
}

// LogShutdown records the standard shutdown event.
func LogShutdown(logger *logrus.Logger, serviceName, reason string) {
	logger.WithFields(logrus.Fields{
		"service": serviceName,
		"reason":  reason,
		"event":   "shutdown",
	}).Info("Application shutdown")
}

// LogForecastRun records the outcome of a forecast training run.
func LogForecastRun(logger *logrus.Logger, strategy, bestModel string, dataPoints, horizon int, duration time.Duration) {
	logger.WithFields(logrus.Fields{
		"strategy":    strategy,
		"best_model":  bestModel,
		"data_points": dataPoints,
		"horizon":     horizon,
		"duration_ms": duration.Milliseconds(),
		"event":       "forecast",
	}).Info("Forecast run completed")
}

// LogCacheOperation records a cache hit or miss.
func LogCacheOperation(logger *logrus.Logger, operation, key string, hit bool, duration time.Duration) {
	logger.WithFields(logrus.Fields{
		"operation":   operation,
		"key":         key,
		"hit":         hit,
		"duration_ms": duration.Milliseconds(),
		"event":       "cache",
	}).Debug("Cache operation")
}

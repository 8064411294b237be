package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Security    SecurityConfig  `mapstructure:"security"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
	Providers   ProvidersConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SecurityConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry  string `mapstructure:"jwt_expiry"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

// AuthConfig points at the flat credential store.
type AuthConfig struct {
	UsersFile string `mapstructure:"users_file"`
}

type ForecastConfig struct {
	MinDataPoints  int    `mapstructure:"min_data_points"`
	DefaultHorizon int    `mapstructure:"default_horizon"`
	MaxHorizon     int    `mapstructure:"max_horizon"`
	ResultCacheTTL string `mapstructure:"result_cache_ttl"`
}

type ProvidersConfig struct {
	Avito    ProviderConfig `mapstructure:"avito"`
	HH       ProviderConfig `mapstructure:"hh"`
	DemoMode bool           `mapstructure:"demo_mode"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	environment := strings.ToLower(config.Environment)

	if environment != "development" && config.Security.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	if config.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(config.Security.JWTExpiry); err != nil {
			return nil, fmt.Errorf("invalid JWT expiry duration: %w", err)
		}
	}

	if config.Security.BcryptCost < bcrypt.MinCost || config.Security.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, config.Security.BcryptCost)
	}

	if config.Forecast.ResultCacheTTL != "" {
		if _, err := time.ParseDuration(config.Forecast.ResultCacheTTL); err != nil {
			return nil, fmt.Errorf("invalid forecast result cache TTL: %w", err)
		}
	}

	config.Environment = environment

	return &config, nil
}

// JWTExpiryDuration returns the parsed token lifetime, defaulting to 24h.
func (c *Config) JWTExpiryDuration() time.Duration {
	d, err := time.ParseDuration(c.Security.JWTExpiry)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// ResultCacheTTL returns the parsed forecast cache TTL, defaulting to 10m.
func (c *Config) ResultCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Forecast.ResultCacheTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Redis (sessions and forecast result cache)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Security
	viper.SetDefault("security.jwt_secret", "")
	viper.SetDefault("security.jwt_expiry", "24h")
	viper.SetDefault("security.bcrypt_cost", 12)

	// Auth
	viper.SetDefault("auth.users_file", "users.json")

	// Forecast
	viper.SetDefault("forecast.min_data_points", 6)
	viper.SetDefault("forecast.default_horizon", 12)
	viper.SetDefault("forecast.max_horizon", 24)
	viper.SetDefault("forecast.result_cache_ttl", "10m")

	// Providers (synthetic clients; base URLs are informational only)
	viper.SetDefault("providers.avito.base_url", "https://api.avito.ru")
	viper.SetDefault("providers.hh.base_url", "https://api.hh.ru")
	viper.SetDefault("providers.demo_mode", true)
}

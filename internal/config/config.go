// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the surgebot engine.
type Config struct {
	// Binance REST API
	BinanceRESTURL string
	BinanceAPIKey  string
	BinanceSecret  string

	// Binance WebSocket
	BinanceWSURL string

	// Trading
	BaseCurrency         string
	PlacementPercentage  float64
	Fee                  float64
	TakeProfitPercentage float64

	// Price detection
	PollInterval    time.Duration
	MaxPollAttempts int

	// HTTP trigger API
	APIPort int

	// Metrics
	PrometheusPort int

	// UI
	EnableTUI     bool
	UIRefreshRate time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		// Binance
		BinanceRESTURL: getEnv("BINANCE_REST_URL", "https://api.binance.com"),
		BinanceAPIKey:  getEnv("BINANCE_API_KEY", ""),
		BinanceSecret:  getEnv("BINANCE_API_SECRET", ""),
		BinanceWSURL:   getEnv("BINANCE_WS_URL", "wss://stream.binance.com:9443/ws"),

		// Trading
		BaseCurrency:         getEnv("BASE_CURRENCY", "USDT"),
		PlacementPercentage:  getEnvFloat("PLACEMENT_PERCENTAGE", 0.3),
		Fee:                  getEnvFloat("FEE", 0.05),
		TakeProfitPercentage: getEnvFloat("TAKE_PROFIT_PERCENTAGE", 5.0),

		// Detection
		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
		MaxPollAttempts: getEnvInt("MAX_POLL_ATTEMPTS", 0),

		// API
		APIPort: getEnvInt("API_PORT", 8080),

		// Metrics
		PrometheusPort: getEnvInt("PROMETHEUS_PORT", 9090),

		// UI
		EnableTUI:     getEnvBool("ENABLE_TUI", true),
		UIRefreshRate: time.Duration(getEnvInt("UI_REFRESH_MS", 500)) * time.Millisecond,

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.BinanceRESTURL == "" {
		return fmt.Errorf("BINANCE_REST_URL is required")
	}

	if c.BinanceWSURL == "" {
		return fmt.Errorf("BINANCE_WS_URL is required")
	}

	if c.BaseCurrency == "" {
		return fmt.Errorf("BASE_CURRENCY is required")
	}

	if c.PlacementPercentage <= 0 || c.PlacementPercentage > 1 {
		return fmt.Errorf("PLACEMENT_PERCENTAGE must be in (0, 1]")
	}

	if c.Fee < 0 {
		return fmt.Errorf("FEE must not be negative")
	}

	if c.TakeProfitPercentage <= 0 {
		return fmt.Errorf("TAKE_PROFIT_PERCENTAGE must be positive")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_MS must be positive")
	}

	if c.MaxPollAttempts < 0 {
		return fmt.Errorf("MAX_POLL_ATTEMPTS must not be negative (0 = unbounded)")
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535")
	}

	if c.PrometheusPort < 1 || c.PrometheusPort > 65535 {
		return fmt.Errorf("PROMETHEUS_PORT must be between 1 and 65535")
	}

	return nil
}

// MaskedAPIKey returns the API key with most characters hidden for logging.
func (c *Config) MaskedAPIKey() string {
	return maskSecret(c.BinanceAPIKey)
}

// MaskedSecret returns the API secret with most characters hidden for logging.
func (c *Config) MaskedSecret() string {
	return maskSecret(c.BinanceSecret)
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

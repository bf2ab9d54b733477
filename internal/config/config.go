package config

import (
	"errors"
	"fmt"
	"os"
)

const (
	defaultAppEnv    = "dev"
	defaultDBPath    = "./pricing.db"
	defaultPort      = "8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	defaultCurrency  = "ZAR"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv      string
	DBPath      string
	Port        string
	LogLevel    string
	LogFormat   string
	PricingFile string
	Currency    string

	// Warnings collects problems found while loading, for the caller to log
	// once a logger exists.
	Warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	var warnings []string

	// Best-effort: production should use real env injection.
	if _, err := loadDotEnv(".env"); err != nil {
		warnings = append(warnings, fmt.Sprintf("read .env: %v", err))
	}

	cfg := Config{
		AppEnv:      getenv("APP_ENV", defaultAppEnv),
		DBPath:      getenv("DB_PATH", defaultDBPath),
		Port:        getenv("PORT", defaultPort),
		LogLevel:    getenv("LOG_LEVEL", defaultLogLevel),
		LogFormat:   getenv("LOG_FORMAT", defaultLogFormat),
		PricingFile: os.Getenv("PRICING_FILE"),
		Currency:    getenv("CURRENCY", defaultCurrency),
	}

	if cfg.PricingFile != "" {
		if _, err := os.Stat(cfg.PricingFile); errors.Is(err, os.ErrNotExist) {
			warnings = append(warnings, fmt.Sprintf("PRICING_FILE %s does not exist; built-in pricing will be used", cfg.PricingFile))
		}
	}
	if !cfg.IsDev() && cfg.LogFormat == defaultLogFormat {
		warnings = append(warnings, "LOG_FORMAT is console outside dev")
	}

	cfg.Warnings = warnings
	return cfg
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"os"
	"strconv"
	"time"

	"goancova/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings. An empty URL disables
// result persistence.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	File            string
	Sheet           string
	ZeroOneAsBinary bool
}

// AnalysisConfig holds defaults applied to every analysis
type AnalysisConfig struct {
	Alpha       float64
	MaxParallel int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:          getEnvOrDefault("DATABASE_URL", ""),
			MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		},
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getEnvDurationOrDefault("READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDurationOrDefault("WRITE_TIMEOUT", 30*time.Second),
		},
		Data: DataConfig{
			File:            getEnvOrDefault("DATA_FILE", ""),
			Sheet:           getEnvOrDefault("DATA_SHEET", ""),
			ZeroOneAsBinary: getEnvBoolOrDefault("ZERO_ONE_AS_BINARY", false),
		},
		Analysis: AnalysisConfig{
			Alpha:       getEnvFloatOrDefault("ALPHA", 0.05),
			MaxParallel: getEnvIntOrDefault("MAX_PARALLEL", 4),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// PersistenceEnabled reports whether results should be written to postgres
func (c *Config) PersistenceEnabled() bool {
	return c.Database.URL != ""
}

func validateConfig(config *Config) error {
	if config.Analysis.Alpha <= 0 || config.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	if config.Analysis.MaxParallel < 1 {
		return errors.ConfigInvalid("MAX_PARALLEL must be at least 1")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	DataDir      string
	DatabasePath string
	LogLevel     string

	// External API credentials (optional - clients fall back to sample data)
	NewsAPIKey      string
	AlphaVantageKey string

	// ESG scoring configuration
	WeightEnvironmental float64
	WeightSocial        float64
	WeightGovernance    float64

	RiskThresholdLow        float64
	RiskThresholdMediumLow  float64
	RiskThresholdMedium     float64
	RiskThresholdMediumHigh float64

	// Symbols re-analyzed by the nightly refresh job
	TrackedSymbols []string

	// S3-compatible backup target (optional)
	BackupBucket    string
	BackupEndpoint  string
	BackupAccessKey string
	BackupSecretKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8000),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DataDir:      getEnv("DATA_DIR", "./data"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/esg_analysis.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		NewsAPIKey:      getEnv("NEWS_API_KEY", ""),
		AlphaVantageKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),

		WeightEnvironmental: getEnvAsFloat("ESG_WEIGHT_ENVIRONMENTAL", 0.35),
		WeightSocial:        getEnvAsFloat("ESG_WEIGHT_SOCIAL", 0.35),
		WeightGovernance:    getEnvAsFloat("ESG_WEIGHT_GOVERNANCE", 0.30),

		RiskThresholdLow:        getEnvAsFloat("RISK_THRESHOLD_LOW", 80),
		RiskThresholdMediumLow:  getEnvAsFloat("RISK_THRESHOLD_MEDIUM_LOW", 65),
		RiskThresholdMedium:     getEnvAsFloat("RISK_THRESHOLD_MEDIUM", 50),
		RiskThresholdMediumHigh: getEnvAsFloat("RISK_THRESHOLD_MEDIUM_HIGH", 35),

		TrackedSymbols: getEnvAsList("TRACKED_SYMBOLS", nil),

		BackupBucket:    getEnv("BACKUP_S3_BUCKET", ""),
		BackupEndpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
		BackupAccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
		BackupSecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and consistent
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	for name, w := range map[string]float64{
		"ESG_WEIGHT_ENVIRONMENTAL": c.WeightEnvironmental,
		"ESG_WEIGHT_SOCIAL":        c.WeightSocial,
		"ESG_WEIGHT_GOVERNANCE":    c.WeightGovernance,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, w)
		}
	}

	sum := c.WeightEnvironmental + c.WeightSocial + c.WeightGovernance
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("ESG weights must sum to 1.0, got %v", sum)
	}

	// The risk step function needs strictly descending cut points
	if !(c.RiskThresholdLow > c.RiskThresholdMediumLow &&
		c.RiskThresholdMediumLow > c.RiskThresholdMedium &&
		c.RiskThresholdMedium > c.RiskThresholdMediumHigh) {
		return fmt.Errorf("risk thresholds must be strictly descending")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"os"
	"strconv"

	"apistudy/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Output   OutputConfig
}

// DataConfig holds input dataset locations
type DataConfig struct {
	ExperimentFile string // CSV/XLSX with API-style trial measurements
	ReviewFile     string // CSV/XLSX with pull request review records
}

// AnalysisConfig holds analysis tuning knobs
type AnalysisConfig struct {
	Seed    int64 // base seed for the normality subsampler
	Workers int   // parallel research question workers, 0 = one per question
}

// OutputConfig holds result export settings
type OutputConfig struct {
	SummaryCSV string // where the flat per-question summary table is written
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			ExperimentFile: getEnvOrDefault("EXPERIMENT_FILE", "experiment_data.csv"),
			ReviewFile:     getEnvOrDefault("REVIEW_FILE", "pull_requests_code_review.csv"),
		},
		Analysis: AnalysisConfig{
			Seed:    getEnvInt64OrDefault("ANALYSIS_SEED", 42),
			Workers: getEnvIntOrDefault("ANALYSIS_WORKERS", 0),
		},
		Output: OutputConfig{
			SummaryCSV: getEnvOrDefault("SUMMARY_CSV", "analysis_summary.csv"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Data.ExperimentFile == "" && cfg.Data.ReviewFile == "" {
		return errors.ConfigInvalid("at least one of EXPERIMENT_FILE or REVIEW_FILE is required")
	}
	if cfg.Analysis.Workers < 0 {
		return errors.ConfigInvalid("ANALYSIS_WORKERS must be >= 0")
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

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

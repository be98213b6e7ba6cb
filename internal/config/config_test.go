package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with defaults failed: %v", err)
	}

	if cfg.Data.ExperimentFile != "experiment_data.csv" {
		t.Errorf("unexpected experiment file default: %s", cfg.Data.ExperimentFile)
	}
	if cfg.Data.ReviewFile != "pull_requests_code_review.csv" {
		t.Errorf("unexpected review file default: %s", cfg.Data.ReviewFile)
	}
	if cfg.Analysis.Seed != 42 {
		t.Errorf("unexpected seed default: %d", cfg.Analysis.Seed)
	}
	if cfg.Analysis.Workers != 0 {
		t.Errorf("unexpected workers default: %d", cfg.Analysis.Workers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EXPERIMENT_FILE", "trials.xlsx")
	t.Setenv("ANALYSIS_SEED", "1234")
	t.Setenv("ANALYSIS_WORKERS", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Data.ExperimentFile != "trials.xlsx" {
		t.Errorf("env override ignored: %s", cfg.Data.ExperimentFile)
	}
	if cfg.Analysis.Seed != 1234 {
		t.Errorf("seed override ignored: %d", cfg.Analysis.Seed)
	}
	if cfg.Analysis.Workers != 8 {
		t.Errorf("workers override ignored: %d", cfg.Analysis.Workers)
	}
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("ANALYSIS_SEED", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Analysis.Seed != 42 {
		t.Errorf("malformed seed should fall back to default, got %d", cfg.Analysis.Seed)
	}
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("ANALYSIS_WORKERS", "-2")

	if _, err := Load(); err == nil {
		t.Fatal("negative worker count should fail validation")
	}
}

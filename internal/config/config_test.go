package config

import (
	"testing"
	"time"
)

// TestLoad_MissingDatabaseURL は必須環境変数の欠如でエラーになることをテストする。
func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error")
	}
}

// TestLoad_Defaults は任意項目のデフォルト値をテストする。
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/trendcatch?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SummarizeModel != "claude-sonnet-4-20250514" {
		t.Errorf("SummarizeModel = %q", cfg.SummarizeModel)
	}
	if cfg.SummarizeBatch != 10 {
		t.Errorf("SummarizeBatch = %d, want 10", cfg.SummarizeBatch)
	}
	if cfg.RateLimits.CollectPerDay != 3 {
		t.Errorf("CollectPerDay = %d, want 3", cfg.RateLimits.CollectPerDay)
	}
	if cfg.RateLimits.SummarizePerDay != 30 {
		t.Errorf("SummarizePerDay = %d, want 30", cfg.RateLimits.SummarizePerDay)
	}
	if cfg.CollectIntervalHours != 6 {
		t.Errorf("CollectIntervalHours = %d, want 6", cfg.CollectIntervalHours)
	}
	if !cfg.SchedulerEnabled {
		t.Error("SchedulerEnabled = false, want true")
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
	}
	if cfg.ExpireDays != 14 {
		t.Errorf("ExpireDays = %d, want 14", cfg.ExpireDays)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
}

// TestLoad_Overrides は環境変数による上書きをテストする。
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/trendcatch?sslmode=disable")
	t.Setenv("RATE_LIMIT_COLLECT_PER_DAY", "5")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RateLimits.CollectPerDay != 5 {
		t.Errorf("CollectPerDay = %d, want 5", cfg.RateLimits.CollectPerDay)
	}
	if cfg.SchedulerEnabled {
		t.Error("SchedulerEnabled = true, want false")
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.FetchTimeout)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
}

// TestLoad_InvalidValuesFallBack は不正な値がデフォルトにフォールバックすることをテストする。
func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/trendcatch?sslmode=disable")
	t.Setenv("SUMMARIZE_BATCH", "not-a-number")
	t.Setenv("SCHEDULER_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SummarizeBatch != 10 {
		t.Errorf("SummarizeBatch = %d, want デフォルトの10", cfg.SummarizeBatch)
	}
	if !cfg.SchedulerEnabled {
		t.Error("SchedulerEnabled = false, want デフォルトのtrue")
	}
}

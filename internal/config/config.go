// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// RateLimits は無料ティアユーザーの日次クォータを保持する。
type RateLimits struct {
	// CollectPerDay は1日あたりの収集実行回数の上限。
	CollectPerDay int
	// SummarizePerDay は1日あたりの要約実行回数の上限。
	SummarizePerDay int
}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// グローバル変数としては保持せず、必要な箇所へ明示的に渡す。
type Config struct {
	// Database
	DatabaseURL string

	// Summarizer
	AnthropicAPIKey string
	SummarizeModel  string
	SummarizeBatch  int

	// Scheduler
	CollectIntervalHours int
	SchedulerEnabled     bool

	// Rate Limit（日次クォータ）
	RateLimits RateLimits

	// HTTPバーストレート制限（req/min/user）
	RateLimitGeneral int

	// Collector
	FetchTimeout     time.Duration
	HNFetchCount     int
	RedditFetchCount int
	GitHubFetchCount int
	DevtoFetchCount  int
	TLDRFetchCount   int
	PHFetchCount     int

	// Ledger
	ExpireDays int

	// Server
	ServerPort        string
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envファイルが存在する場合は先に読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envは存在しなくてもよい（本番では環境変数を直接設定する）
	_ = godotenv.Load()

	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.SummarizeModel = getEnvString("SUMMARIZE_MODEL", "claude-sonnet-4-20250514")
	cfg.SummarizeBatch = getEnvInt("SUMMARIZE_BATCH", 10)
	cfg.CollectIntervalHours = getEnvInt("COLLECT_INTERVAL_HOURS", 6)
	cfg.SchedulerEnabled = getEnvBool("SCHEDULER_ENABLED", true)
	cfg.RateLimits = RateLimits{
		CollectPerDay:   getEnvInt("RATE_LIMIT_COLLECT_PER_DAY", 3),
		SummarizePerDay: getEnvInt("RATE_LIMIT_SUMMARIZE_PER_DAY", 30),
	}
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.HNFetchCount = getEnvInt("HN_FETCH_COUNT", 30)
	cfg.RedditFetchCount = getEnvInt("REDDIT_FETCH_COUNT", 20)
	cfg.GitHubFetchCount = getEnvInt("GITHUB_FETCH_COUNT", 20)
	cfg.DevtoFetchCount = getEnvInt("DEVTO_FETCH_COUNT", 20)
	cfg.TLDRFetchCount = getEnvInt("TLDR_FETCH_COUNT", 15)
	cfg.PHFetchCount = getEnvInt("PH_FETCH_COUNT", 20)
	cfg.ExpireDays = getEnvInt("EXPIRE_DAYS", 14)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/trendcatch/internal/collector"
	"github.com/hitoshi/trendcatch/internal/config"
	"github.com/hitoshi/trendcatch/internal/database"
	"github.com/hitoshi/trendcatch/internal/handler"
	"github.com/hitoshi/trendcatch/internal/item"
	"github.com/hitoshi/trendcatch/internal/logger"
	"github.com/hitoshi/trendcatch/internal/metrics"
	"github.com/hitoshi/trendcatch/internal/middleware"
	"github.com/hitoshi/trendcatch/internal/preference"
	"github.com/hitoshi/trendcatch/internal/quota"
	"github.com/hitoshi/trendcatch/internal/ranking"
	"github.com/hitoshi/trendcatch/internal/repository"
	"github.com/hitoshi/trendcatch/internal/security"
	"github.com/hitoshi/trendcatch/internal/summarizer"
	"github.com/hitoshi/trendcatch/internal/user"
	"github.com/hitoshi/trendcatch/internal/worker/cleanup"
	collectworker "github.com/hitoshi/trendcatch/internal/worker/collect"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// services はモード間で共有される依存関係の束。
type services struct {
	itemService      *item.ItemService
	statusService    *item.StatusService
	reviewService    *item.ReviewService
	userService      *user.Service
	prefService      *preference.Service
	rankingService   *ranking.Service
	quotaService     *quota.Service
	collectRegistry  *collector.Registry
	summarizeService *summarizer.Service
	metricsCollector *metrics.Collector
	metricsRegistry  *prometheus.Registry
}

// buildServices は全リポジトリとドメインサービスをワイヤリングする。
func buildServices(db *sql.DB, cfg *config.Config) *services {
	// 1. リポジトリの初期化
	itemRepo := repository.NewPostgresItemRepo(db)
	userRepo := repository.NewPostgresUserRepo(db)
	statusRepo := repository.NewPostgresStatusRepo(db)
	prefRepo := repository.NewPostgresPreferenceRepo(db)
	rateLimitRepo := repository.NewPostgresRateLimitRepo(db)

	// 2. セキュリティサービスの初期化
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	// 3. メトリクスの初期化
	reg := prometheus.NewRegistry()
	metricsCollector := metrics.NewCollector(reg)

	// 4. ドメインサービスの初期化
	itemService := item.NewItemService(itemRepo, sanitizer)
	statusService := item.NewStatusService(statusRepo)
	reviewService := item.NewReviewService(itemRepo, statusRepo, metricsCollector)
	userService := user.NewService(userRepo)
	prefService := preference.NewService(prefRepo)
	rankingService := ranking.NewService(statusRepo, prefRepo, statusService)
	quotaService := quota.NewService(rateLimitRepo, userRepo, cfg.RateLimits, metricsCollector)

	// 5. コレクターの初期化
	safeClient := ssrfGuard.NewSafeClient(cfg.FetchTimeout)
	registry := collector.NewRegistry(itemService, metricsCollector)
	registry.Register(collector.NewHackerNewsCollector(safeClient), cfg.HNFetchCount)
	registry.Register(collector.NewRedditCollector(safeClient), cfg.RedditFetchCount)
	registry.Register(collector.NewGitHubCollector(safeClient), cfg.GitHubFetchCount)
	registry.Register(collector.NewDevtoCollector(safeClient), cfg.DevtoFetchCount)
	registry.Register(collector.NewTLDRCollector(safeClient), cfg.TLDRFetchCount)
	registry.Register(collector.NewProductHuntCollector(safeClient), cfg.PHFetchCount)

	// 6. 要約サービスの初期化（APIキー未設定の場合は無効化）
	var summarizeService *summarizer.Service
	if client := summarizer.NewClient(cfg.AnthropicAPIKey, cfg.SummarizeModel); client != nil {
		summarizeService = summarizer.NewService(itemRepo, client, sanitizer, metricsCollector)
	} else {
		summarizeService = summarizer.NewService(itemRepo, nil, sanitizer, metricsCollector)
	}

	return &services{
		itemService:      itemService,
		statusService:    statusService,
		reviewService:    reviewService,
		userService:      userService,
		prefService:      prefService,
		rankingService:   rankingService,
		quotaService:     quotaService,
		collectRegistry:  registry,
		summarizeService: summarizeService,
		metricsCollector: metricsCollector,
		metricsRegistry:  reg,
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	svcs := buildServices(db, cfg)

	// 2. ミドルウェアとルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral))
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		UserResolver:      svcs.userService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		ItemService:    svcs.itemService,
		StatusService:  svcs.statusService,
		StatusSyncer:   svcs.statusService,
		StatusFinder:   repository.NewPostgresStatusRepo(db),
		RankingService: svcs.rankingService,
		ReviewService:  svcs.reviewService,

		UserService:       svcs.userService,
		PreferenceService: svcs.prefService,

		QuotaService:    svcs.quotaService,
		CollectRunner:   svcs.collectRegistry,
		SummarizeRunner: svcs.summarizeService,
		SummarizeBatch:  cfg.SummarizeBatch,

		SchedulerEnabled:     cfg.SchedulerEnabled,
		CollectIntervalHours: cfg.CollectIntervalHours,

		MetricsHandler: metrics.Handler(svcs.metricsRegistry),
	}

	router := handler.NewRouter(deps)

	// 3. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 定期収集スケジューラと期限切れジョブを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	svcs := buildServices(db, cfg)

	// 2. 期限切れジョブの初期化
	expireJob := cleanup.NewExpireJob(db, slog.Default(), svcs.metricsCollector)
	expireJob.ExpireDays = cfg.ExpireDays

	// 3. 収集スケジューラの初期化
	scheduler := collectworker.NewScheduler(
		svcs.collectRegistry, svcs.summarizeService, slog.Default(), cfg.SummarizeBatch,
	)

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Int("collect_interval_hours", cfg.CollectIntervalHours),
		slog.Bool("scheduler_enabled", cfg.SchedulerEnabled),
	)

	if cfg.SchedulerEnabled {
		// 期限切れジョブを日次でバックグラウンド実行
		go expireJob.StartDaily(ctx)

		// 収集スケジューラをメインgoroutineで実行（ブロッキング）
		interval := time.Duration(cfg.CollectIntervalHours) * time.Hour
		scheduler.Start(ctx, interval)
	} else {
		// スケジューラ無効時は期限切れジョブのみ実行する
		expireJob.StartDaily(ctx)
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

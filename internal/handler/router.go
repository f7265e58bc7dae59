package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/trendcatch/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserResolver      middleware.UserResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// アイテム
	ItemService    ItemServiceInterface
	StatusService  StatusServiceInterface
	StatusSyncer   StatusSyncerInterface
	StatusFinder   StatusFinderInterface
	RankingService RankingServiceInterface
	ReviewService  ReviewServiceInterface

	// ユーザー
	UserService       UserServiceInterface
	PreferenceService PreferenceServiceInterface

	// 収集・要約
	QuotaService    QuotaServiceInterface
	CollectRunner   CollectRunnerInterface
	SummarizeRunner SummarizeRunnerInterface
	SummarizeBatch  int

	// スケジューラ設定（serveプロセスからは設定値の報告のみ）
	SchedulerEnabled     bool
	CollectIntervalHours int

	// /metrics用ハンドラー
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS → Visitor → RateLimit
//
// /healthと/metricsは訪問者解決の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	itemHandler := NewItemHandler(
		deps.ItemService,
		deps.StatusService,
		deps.StatusFinder,
		deps.RankingService,
		deps.ReviewService,
	)
	userHandler := NewUserHandler(deps.UserService, deps.PreferenceService, deps.QuotaService)
	opsHandler := NewOpsHandler(
		deps.QuotaService,
		deps.CollectRunner,
		deps.SummarizeRunner,
		deps.StatusSyncer,
		deps.SummarizeBatch,
	)

	// --- 訪問者解決不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 訪問者解決が必要なルート ---
	// ミドルウェアスタック: Visitor → RateLimit
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewVisitorMiddleware(deps.UserResolver))
		r.Use(deps.RateLimiter.Middleware())

		// アイテム
		r.Route("/api/items", func(r chi.Router) {
			r.Get("/", itemHandler.ListItems)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", itemHandler.GetItem)
				r.Post("/review", itemHandler.ReviewItem)
			})
		})

		// おすすめ
		r.Get("/api/foryou", itemHandler.ForYou)

		// ユーザー
		r.Get("/api/me", userHandler.Me)
		r.Get("/api/preferences", userHandler.Preferences)

		// 収集・要約のオンデマンド実行
		r.Post("/api/collect", opsHandler.Collect)
		r.Post("/api/summarize", opsHandler.Summarize)

		// スケジューラの設定値の報告。
		// ワーカーは別プロセスのため実行中の状態ではなく設定を返す。
		r.Get("/api/scheduler/status", func(w http.ResponseWriter, req *http.Request) {
			writeJSONResponse(w, http.StatusOK, map[string]any{
				"enabled":            deps.SchedulerEnabled,
				"interval_hours":     deps.CollectIntervalHours,
				"summarizer_enabled": deps.SummarizeRunner.Enabled(),
			})
		})
	})

	return r
}

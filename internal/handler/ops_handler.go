package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/trendcatch/internal/collector"
	"github.com/hitoshi/trendcatch/internal/middleware"
	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/summarizer"
)

// CollectRunnerInterface は収集サイクル実行のインターフェース。
type CollectRunnerInterface interface {
	CollectAll(ctx context.Context) *collector.CollectSummary
}

// SummarizeRunnerInterface は要約バッチ実行のインターフェース。
type SummarizeRunnerInterface interface {
	Enabled() bool
	SummarizeNewItems(ctx context.Context, limit int) (summarizer.BatchResult, error)
}

// QuotaServiceInterface は日次クォータの判定・加算インターフェース。
type QuotaServiceInterface interface {
	Check(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error)
	Increment(ctx context.Context, userUUID string, action model.QuotaAction) error
}

// StatusSyncerInterface は台帳同期のインターフェース。
type StatusSyncerInterface interface {
	SyncItemsForUser(ctx context.Context, userUUID string) (int, error)
}

// OpsHandler は収集・要約のオンデマンド実行ハンドラー。
// 無料ティアの実行回数は日次クォータで制限される。
type OpsHandler struct {
	quota          QuotaServiceInterface
	collectRunner  CollectRunnerInterface
	summarizer     SummarizeRunnerInterface
	syncer         StatusSyncerInterface
	summarizeBatch int
}

// NewOpsHandler はOpsHandlerを生成する。
func NewOpsHandler(
	quota QuotaServiceInterface,
	collectRunner CollectRunnerInterface,
	summarizeRunner SummarizeRunnerInterface,
	syncer StatusSyncerInterface,
	summarizeBatch int,
) *OpsHandler {
	return &OpsHandler{
		quota:          quota,
		collectRunner:  collectRunner,
		summarizer:     summarizeRunner,
		syncer:         syncer,
		summarizeBatch: summarizeBatch,
	}
}

// collectResponse は収集実行のレスポンス。
type collectResponse struct {
	*collector.CollectSummary
	Synced    int `json:"synced"`
	Remaining int `json:"remaining"`
}

// summarizeResponse は要約実行のレスポンス。
type summarizeResponse struct {
	summarizer.BatchResult
	Remaining int `json:"remaining"`
}

// Collect は収集サイクルをオンデマンド実行する。
// POST /api/collect
//
// クォータ確認 → カウンタ加算 → 収集 → 台帳同期 の順で処理する。
// クォータ超過時は429を返し、収集は実行しない。
func (h *OpsHandler) Collect(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	allowed, remaining, err := h.quota.Check(r.Context(), userUUID, model.QuotaCollect)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !allowed {
		writeAPIErrorResponse(w, http.StatusTooManyRequests, model.NewQuotaExceededError("収集"))
		return
	}

	if err := h.quota.Increment(r.Context(), userUUID, model.QuotaCollect); err != nil {
		handleServiceError(w, err)
		return
	}
	if remaining > 0 {
		remaining--
	}

	summary := h.collectRunner.CollectAll(r.Context())

	synced, err := h.syncer.SyncItemsForUser(r.Context(), userUUID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, collectResponse{
		CollectSummary: summary,
		Synced:         synced,
		Remaining:      remaining,
	})
}

// Summarize は未要約アイテムの要約バッチをオンデマンド実行する。
// POST /api/summarize
//
// 要約APIキー未設定の場合は503を返す。
func (h *OpsHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	if !h.summarizer.Enabled() {
		writeAPIErrorResponse(w, http.StatusServiceUnavailable, &model.APIError{
			Code:     "SUMMARIZER_DISABLED",
			Message:  "要約機能は現在利用できません。",
			Category: "system",
			Action:   "管理者に問い合わせてください。",
		})
		return
	}

	allowed, remaining, err := h.quota.Check(r.Context(), userUUID, model.QuotaSummarize)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if !allowed {
		writeAPIErrorResponse(w, http.StatusTooManyRequests, model.NewQuotaExceededError("要約"))
		return
	}

	if err := h.quota.Increment(r.Context(), userUUID, model.QuotaSummarize); err != nil {
		handleServiceError(w, err)
		return
	}
	if remaining > 0 {
		remaining--
	}

	result, err := h.summarizer.SummarizeNewItems(r.Context(), h.summarizeBatch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, summarizeResponse{
		BatchResult: result,
		Remaining:   remaining,
	})
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/trendcatch/internal/middleware"
	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/preference"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Get は指定UUIDのユーザーを返す。見つからない場合はnilを返す。
	Get(ctx context.Context, userUUID string) (*model.User, error)
}

// PreferenceServiceInterface は選好スコアサービスのインターフェース。
type PreferenceServiceInterface interface {
	GetUserPreferences(ctx context.Context, userUUID string) (map[string]int, error)
	GetStats(ctx context.Context, userUUID string) (*preference.Stats, error)
}

// QuotaCheckerInterface は日次クォータの残量確認インターフェース。
type QuotaCheckerInterface interface {
	Check(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error)
}

// UserHandler はユーザー関連のHTTPハンドラー。
type UserHandler struct {
	userService UserServiceInterface
	prefService PreferenceServiceInterface
	quota       QuotaCheckerInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(
	userService UserServiceInterface,
	prefService PreferenceServiceInterface,
	quota QuotaCheckerInterface,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		prefService: prefService,
		quota:       quota,
	}
}

// meResponse は現在の訪問者情報のレスポンス。
type meResponse struct {
	UUID               string     `json:"uuid"`
	Tier               string     `json:"tier"`
	CreatedAt          time.Time  `json:"created_at"`
	LastSeenAt         *time.Time `json:"last_seen_at,omitempty"`
	CollectRemaining   int        `json:"collect_remaining"`
	SummarizeRemaining int        `json:"summarize_remaining"`
}

// tagScoreResponse はタグスコアのレスポンス。
type tagScoreResponse struct {
	Tag   string `json:"tag"`
	Score int    `json:"score"`
}

// preferencesResponse は選好スコア一覧のレスポンス。
type preferencesResponse struct {
	Scores   map[string]int     `json:"scores"`
	Positive []tagScoreResponse `json:"positive"`
	Negative []tagScoreResponse `json:"negative"`
	Neutral  []tagScoreResponse `json:"neutral"`
	Total    int                `json:"total"`
}

// Me は現在の訪問者の情報とクォータ残量を取得する。
// GET /api/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	user, err := h.userService.Get(r.Context(), userUUID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError())
		return
	}

	_, collectRemaining, err := h.quota.Check(r.Context(), userUUID, model.QuotaCollect)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	_, summarizeRemaining, err := h.quota.Check(r.Context(), userUUID, model.QuotaSummarize)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, meResponse{
		UUID:               user.UUID,
		Tier:               string(user.Tier),
		CreatedAt:          user.CreatedAt,
		LastSeenAt:         user.LastSeenAt,
		CollectRemaining:   collectRemaining,
		SummarizeRemaining: summarizeRemaining,
	})
}

// Preferences は訪問者のタグ選好スコアを取得する。
// GET /api/preferences
func (h *UserHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	scores, err := h.prefService.GetUserPreferences(r.Context(), userUUID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	stats, err := h.prefService.GetStats(r.Context(), userUUID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := preferencesResponse{
		Scores:   scores,
		Positive: toTagScoreResponses(stats.Positive),
		Negative: toTagScoreResponses(stats.Negative),
		Neutral:  toTagScoreResponses(stats.Neutral),
		Total:    stats.Total,
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

func toTagScoreResponses(scores []preference.TagScore) []tagScoreResponse {
	resp := make([]tagScoreResponse, 0, len(scores))
	for _, s := range scores {
		resp = append(resp, tagScoreResponse{Tag: s.Tag, Score: s.Score})
	}
	return resp
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/trendcatch/internal/middleware"
	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/ranking"
)

// ItemServiceInterface はアイテムハンドラーが必要とするカタログサービスのインターフェース。
type ItemServiceInterface interface {
	// GetItem はアイテム詳細を返す。見つからない場合はnilを返す。
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
}

// StatusServiceInterface は台帳サービスのインターフェース。
type StatusServiceInterface interface {
	// GetUserItems はユーザーの台帳を指定ステータスで絞り込んで返す。
	GetUserItems(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error)
}

// StatusFinderInterface は個別アイテムの台帳状態取得のインターフェース。
type StatusFinderInterface interface {
	FindByUserAndItem(ctx context.Context, userUUID, itemID string) (*model.UserItemStatus, error)
}

// RankingServiceInterface は順位付けサービスのインターフェース。
type RankingServiceInterface interface {
	// RankForReview は未レビューアイテムを優先度降順で返す。
	RankForReview(ctx context.Context, userUUID string, limit int) ([]ranking.Ranked, error)
	// GetForYou は優先度がminScore以上のアイテムのみを返す。
	GetForYou(ctx context.Context, userUUID string, minScore, limit int) ([]ranking.Ranked, error)
}

// ReviewServiceInterface はレビューサービスのインターフェース。
type ReviewServiceInterface interface {
	ReviewItem(ctx context.Context, userUUID, itemID string, action model.ReviewAction) error
}

// ItemHandler はアイテム関連のHTTPハンドラー。
type ItemHandler struct {
	itemService    ItemServiceInterface
	statusService  StatusServiceInterface
	statusFinder   StatusFinderInterface
	rankingService RankingServiceInterface
	reviewService  ReviewServiceInterface
}

// NewItemHandler はItemHandlerを生成する。
func NewItemHandler(
	itemService ItemServiceInterface,
	statusService StatusServiceInterface,
	statusFinder StatusFinderInterface,
	rankingService RankingServiceInterface,
	reviewService ReviewServiceInterface,
) *ItemHandler {
	return &ItemHandler{
		itemService:    itemService,
		statusService:  statusService,
		statusFinder:   statusFinder,
		rankingService: rankingService,
		reviewService:  reviewService,
	}
}

// --- レスポンス型 ---

// itemResponse はアイテムのAPIレスポンス。
type itemResponse struct {
	ID              string     `json:"id"`
	Source          string     `json:"source"`
	Title           string     `json:"title"`
	TitleTranslated string     `json:"title_translated,omitempty"`
	URL             string     `json:"url"`
	Summary         string     `json:"summary,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	CollectedAt     time.Time  `json:"collected_at"`
	Status          string     `json:"status,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	Priority        *int       `json:"priority,omitempty"`
}

// itemListResponse はアイテム一覧のレスポンス。
type itemListResponse struct {
	Items []itemResponse `json:"items"`
	Total int            `json:"total"`
}

// reviewRequest はレビューリクエストのボディ。
type reviewRequest struct {
	Action string `json:"action"`
}

func toItemResponse(item *model.Item) itemResponse {
	return itemResponse{
		ID:              item.ID,
		Source:          item.Source,
		Title:           item.Title,
		TitleTranslated: item.TitleTranslated,
		URL:             item.URL,
		Summary:         item.Summary,
		Tags:            item.Tags,
		CollectedAt:     item.CollectedAt,
	}
}

// ListItems はユーザーのアイテム一覧を取得する。
// GET /api/items?status=new|liked|skipped|expired&limit=N
//
// status=new（デフォルト）の場合は台帳を同期した上で
// 選好スコアの優先度降順に並べて返す。
// それ以外のステータスはcollected_at降順で返す。
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	statusStr := r.URL.Query().Get("status")
	if statusStr == "" {
		statusStr = string(model.StatusNew)
	}
	limit := parseIntQuery(r, "limit", 0)

	// 未レビュー一覧は順位付けして返す
	if statusStr == string(model.StatusNew) {
		ranked, err := h.rankingService.RankForReview(r.Context(), userUUID, limit)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		items := make([]itemResponse, 0, len(ranked))
		for i := range ranked {
			resp := toItemResponse(&ranked[i].Item)
			resp.Status = string(model.StatusNew)
			priority := ranked[i].Priority
			resp.Priority = &priority
			items = append(items, resp)
		}

		writeJSONResponse(w, http.StatusOK, itemListResponse{Items: items, Total: len(items)})
		return
	}

	rows, err := h.statusService.GetUserItems(r.Context(), userUUID, model.ReviewStatus(statusStr), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]itemResponse, 0, len(rows))
	for i := range rows {
		resp := toItemResponse(&rows[i].Item)
		resp.Status = string(rows[i].Status)
		resp.ReviewedAt = rows[i].ReviewedAt
		items = append(items, resp)
	}

	writeJSONResponse(w, http.StatusOK, itemListResponse{Items: items, Total: len(items)})
}

// GetItem はアイテム詳細をユーザーごとのレビュー状態付きで取得する。
// GET /api/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	itemID := chi.URLParam(r, "id")

	item, err := h.itemService.GetItem(r.Context(), itemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if item == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewItemNotFoundError(itemID))
		return
	}

	resp := toItemResponse(item)

	status, err := h.statusFinder.FindByUserAndItem(r.Context(), userUUID, itemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if status != nil {
		resp.Status = string(status.Status)
		resp.ReviewedAt = status.ReviewedAt
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// ReviewItem はアイテムのレビュー（like/skip）を処理する。
// POST /api/items/{id}/review
func (h *ItemHandler) ReviewItem(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	itemID := chi.URLParam(r, "id")

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidActionError(""))
		return
	}

	if err := h.reviewService.ReviewItem(r.Context(), userUUID, itemID, model.ReviewAction(req.Action)); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{
		"item_id": itemID,
		"action":  req.Action,
	})
}

// ForYou は選好スコアに基づくおすすめ一覧を取得する。
// GET /api/foryou?min_score=N&limit=N
//
// 選好がまだ空のユーザーには空の一覧を返す。
func (h *ItemHandler) ForYou(w http.ResponseWriter, r *http.Request) {
	userUUID, err := middleware.UserUUIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, unauthorizedError())
		return
	}

	minScore := parseIntQuery(r, "min_score", 0)
	limit := parseIntQuery(r, "limit", 0)

	ranked, err := h.rankingService.GetForYou(r.Context(), userUUID, minScore, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]itemResponse, 0, len(ranked))
	for i := range ranked {
		resp := toItemResponse(&ranked[i].Item)
		resp.Status = string(model.StatusNew)
		priority := ranked[i].Priority
		resp.Priority = &priority
		items = append(items, resp)
	}

	writeJSONResponse(w, http.StatusOK, itemListResponse{Items: items, Total: len(items)})
}

// parseIntQuery はクエリパラメータを整数として解釈する。
// 未指定・不正な値の場合はdefaultValを返す。
func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

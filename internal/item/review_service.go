package item

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/repository"
)

// ReviewMetrics はレビュー操作のメトリクス記録インターフェース。
type ReviewMetrics interface {
	RecordReview(action string)
}

// ReviewService はレビュー操作（like/skip）の管理サービス。
// 台帳の状態更新とタグ選好スコアの差分適用を1つの論理トランザクションとして扱う。
type ReviewService struct {
	itemRepo   repository.ItemRepository
	statusRepo repository.StatusRepository
	metrics    ReviewMetrics
}

// NewReviewService はReviewServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewReviewService(
	itemRepo repository.ItemRepository,
	statusRepo repository.StatusRepository,
	metrics ReviewMetrics,
) *ReviewService {
	return &ReviewService{
		itemRepo:   itemRepo,
		statusRepo: statusRepo,
		metrics:    metrics,
	}
}

// ReviewItem はアイテムをレビューする。
//
// バリデーション順序: 操作の検証 → アイテムの存在確認 → 状態更新。
// 無効な操作はいかなる変更よりも前に拒否され、INVALID_ACTIONエラーになる。
// アイテムが存在しない場合はITEM_NOT_FOUNDエラーを返す。
//
// 台帳の状態更新とタグスコア差分の適用は同一トランザクションでコミットされる。
// 差分対象のタグもそのトランザクション内で読み取られる。
// 同一終端状態への再レビュー（ダブルサブミット）は状態・スコアともに変化させない。
// 訂正（liked→skipped等）は前回の寄与を打ち消した上で新しい寄与を適用する。
func (s *ReviewService) ReviewItem(ctx context.Context, userUUID, itemID string, action model.ReviewAction) error {
	// 操作の検証（いかなる変更よりも前）
	next, ok := action.TerminalStatus()
	if !ok {
		return model.NewInvalidActionError(string(action))
	}

	// アイテムの存在確認
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return model.NewItemNotFoundError(itemID)
	}

	now := time.Now().UTC()

	prev, err := s.statusRepo.Review(ctx, userUUID, itemID, next, now)
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordReview(string(action))
	}

	slog.Info("アイテムをレビューしました",
		slog.String("user_uuid", userUUID),
		slog.String("item_id", itemID),
		slog.String("action", string(action)),
		slog.String("prev_status", string(prev)),
	)

	return nil
}

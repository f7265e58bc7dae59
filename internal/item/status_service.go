package item

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/repository"
)

// defaultListLimit は台帳一覧のデフォルト取得件数。
const defaultListLimit = 100

// StatusService はユーザーごとのレビュー状態台帳の管理サービス。
// カタログから台帳へのファンアウト（同期）と状態フィルタ付き一覧を提供する。
type StatusService struct {
	statusRepo repository.StatusRepository
}

// NewStatusService はStatusServiceの新しいインスタンスを生成する。
func NewStatusService(statusRepo repository.StatusRepository) *StatusService {
	return &StatusService{statusRepo: statusRepo}
}

// SyncItemsForUser はこのユーザーの台帳に存在しない全アイテムに対して
// status='new'の行を作成し、作成した行数を返す。
// 新しいアイテムがない場合の再呼び出しは0を返す（冪等）。
// 同一ユーザーの並行呼び出しでも行は重複しない。
func (s *StatusService) SyncItemsForUser(ctx context.Context, userUUID string) (int, error) {
	synced, err := s.statusRepo.SyncForUser(ctx, userUUID)
	if err != nil {
		return 0, err
	}

	if synced > 0 {
		slog.Info("台帳を同期しました",
			slog.String("user_uuid", userUUID),
			slog.Int("synced", synced),
		)
	}

	return synced, nil
}

// GetUserItems はユーザーの台帳をアイテムとJOINし、
// 指定ステータスの行をcollected_at降順でlimit件まで返す。
// statusが無効な場合はINVALID_STATUSエラーを返す。
// limitが0以下の場合はデフォルト値を使用する。
func (s *StatusService) GetUserItems(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error) {
	if !status.IsValid() {
		return nil, model.NewInvalidStatusError(string(status))
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	return s.statusRepo.ListForUser(ctx, userUUID, status, limit)
}

// ExpireOldItems はこのユーザーのstatus='new'の行のうち、
// アイテムの収集日時がdays日前より古いものをexpiredへ遷移させ、件数を返す。
// レビュー済み・期限切れ済みの行は対象外。
func (s *StatusService) ExpireOldItems(ctx context.Context, userUUID string, days int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	expired, err := s.statusRepo.ExpireOlderThan(ctx, userUUID, cutoff)
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		slog.Info("期限切れアイテムを遷移しました",
			slog.String("user_uuid", userUUID),
			slog.Int("expired", expired),
			slog.Int("days", days),
		)
	}

	return expired, nil
}

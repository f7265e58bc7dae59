package ranking

import (
	"context"

	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/repository"
)

const (
	// defaultReviewLimit はレビューキューの最大取得件数。
	defaultReviewLimit = 100
	// defaultForYouLimit はおすすめ一覧のデフォルト件数。
	defaultForYouLimit = 20
	// defaultForYouMinScore はおすすめに載せる優先度の下限（この値以上のもののみ）。
	defaultForYouMinScore = 0
)

// StatusSyncer は台帳同期のインターフェース。
type StatusSyncer interface {
	SyncItemsForUser(ctx context.Context, userUUID string) (int, error)
}

// Service は選好スコアと台帳を組み合わせた順位付けサービス。
type Service struct {
	statusRepo repository.StatusRepository
	prefRepo   repository.PreferenceRepository
	syncer     StatusSyncer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	statusRepo repository.StatusRepository,
	prefRepo repository.PreferenceRepository,
	syncer StatusSyncer,
) *Service {
	return &Service{
		statusRepo: statusRepo,
		prefRepo:   prefRepo,
		syncer:     syncer,
	}
}

// RankForReview はユーザーの未レビュー（status=new）アイテムを
// 選好スコアの優先度降順で返す。取得前に台帳を同期し、
// 最新の収集アイテムがキューに含まれることを保証する。
func (s *Service) RankForReview(ctx context.Context, userUUID string, limit int) ([]Ranked, error) {
	if _, err := s.syncer.SyncItemsForUser(ctx, userUUID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultReviewLimit
	}

	rows, err := s.statusRepo.ListForUser(ctx, userUUID, model.StatusNew, limit)
	if err != nil {
		return nil, err
	}

	prefs, err := s.prefRepo.MapByUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Item)
	}

	return Rank(items, prefs), nil
}

// GetForYou は優先度がminScore以上の未レビューアイテムのみを
// 降順でlimit件まで返す。選好が空のユーザーには空を返す。
func (s *Service) GetForYou(ctx context.Context, userUUID string, minScore, limit int) ([]Ranked, error) {
	if _, err := s.syncer.SyncItemsForUser(ctx, userUUID); err != nil {
		return nil, err
	}

	prefs, err := s.prefRepo.MapByUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return []Ranked{}, nil
	}

	if limit <= 0 {
		limit = defaultForYouLimit
	}

	rows, err := s.statusRepo.ListForUser(ctx, userUUID, model.StatusNew, defaultReviewLimit)
	if err != nil {
		return nil, err
	}

	items := make([]model.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Item)
	}

	return ForYou(items, prefs, minScore, limit), nil
}

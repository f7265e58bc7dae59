package handler

import (
	"context"

	"github.com/hitoshi/trendcatch/internal/collector"
	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/preference"
	"github.com/hitoshi/trendcatch/internal/ranking"
	"github.com/hitoshi/trendcatch/internal/summarizer"
)

// ハンドラーテストで共有するモック群。
// 各インターフェースを関数フィールドで差し替え可能にする。

type mockItemService struct {
	getItemFn func(ctx context.Context, itemID string) (*model.Item, error)
}

func (m *mockItemService) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, itemID)
	}
	return nil, nil
}

type mockStatusService struct {
	getUserItemsFn func(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error)
}

func (m *mockStatusService) GetUserItems(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error) {
	if m.getUserItemsFn != nil {
		return m.getUserItemsFn(ctx, userUUID, status, limit)
	}
	return nil, nil
}

type mockStatusFinder struct {
	findFn func(ctx context.Context, userUUID, itemID string) (*model.UserItemStatus, error)
}

func (m *mockStatusFinder) FindByUserAndItem(ctx context.Context, userUUID, itemID string) (*model.UserItemStatus, error) {
	if m.findFn != nil {
		return m.findFn(ctx, userUUID, itemID)
	}
	return nil, nil
}

type mockRankingService struct {
	rankForReviewFn func(ctx context.Context, userUUID string, limit int) ([]ranking.Ranked, error)
	getForYouFn     func(ctx context.Context, userUUID string, minScore, limit int) ([]ranking.Ranked, error)
}

func (m *mockRankingService) RankForReview(ctx context.Context, userUUID string, limit int) ([]ranking.Ranked, error) {
	if m.rankForReviewFn != nil {
		return m.rankForReviewFn(ctx, userUUID, limit)
	}
	return nil, nil
}

func (m *mockRankingService) GetForYou(ctx context.Context, userUUID string, minScore, limit int) ([]ranking.Ranked, error) {
	if m.getForYouFn != nil {
		return m.getForYouFn(ctx, userUUID, minScore, limit)
	}
	return nil, nil
}

type mockReviewService struct {
	reviewItemFn func(ctx context.Context, userUUID, itemID string, action model.ReviewAction) error
}

func (m *mockReviewService) ReviewItem(ctx context.Context, userUUID, itemID string, action model.ReviewAction) error {
	if m.reviewItemFn != nil {
		return m.reviewItemFn(ctx, userUUID, itemID, action)
	}
	return nil
}

type mockUserService struct {
	getFn func(ctx context.Context, userUUID string) (*model.User, error)
}

func (m *mockUserService) Get(ctx context.Context, userUUID string) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userUUID)
	}
	return nil, nil
}

type mockPreferenceService struct {
	getPrefsFn func(ctx context.Context, userUUID string) (map[string]int, error)
	getStatsFn func(ctx context.Context, userUUID string) (*preference.Stats, error)
}

func (m *mockPreferenceService) GetUserPreferences(ctx context.Context, userUUID string) (map[string]int, error) {
	if m.getPrefsFn != nil {
		return m.getPrefsFn(ctx, userUUID)
	}
	return map[string]int{}, nil
}

func (m *mockPreferenceService) GetStats(ctx context.Context, userUUID string) (*preference.Stats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, userUUID)
	}
	return &preference.Stats{}, nil
}

type mockQuotaService struct {
	checkFn     func(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error)
	incrementFn func(ctx context.Context, userUUID string, action model.QuotaAction) error
}

func (m *mockQuotaService) Check(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx, userUUID, action)
	}
	return true, 3, nil
}

func (m *mockQuotaService) Increment(ctx context.Context, userUUID string, action model.QuotaAction) error {
	if m.incrementFn != nil {
		return m.incrementFn(ctx, userUUID, action)
	}
	return nil
}

type mockCollectRunner struct {
	collectAllFn func(ctx context.Context) *collector.CollectSummary
}

func (m *mockCollectRunner) CollectAll(ctx context.Context) *collector.CollectSummary {
	if m.collectAllFn != nil {
		return m.collectAllFn(ctx)
	}
	return &collector.CollectSummary{}
}

type mockSummarizeRunner struct {
	enabled     bool
	summarizeFn func(ctx context.Context, limit int) (summarizer.BatchResult, error)
}

func (m *mockSummarizeRunner) Enabled() bool {
	return m.enabled
}

func (m *mockSummarizeRunner) SummarizeNewItems(ctx context.Context, limit int) (summarizer.BatchResult, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, limit)
	}
	return summarizer.BatchResult{}, nil
}

type mockUserResolver struct {
	getOrCreateFn func(ctx context.Context, userUUID string) (*model.User, error)
}

func (m *mockUserResolver) GetOrCreate(ctx context.Context, userUUID string) (*model.User, error) {
	if m.getOrCreateFn != nil {
		return m.getOrCreateFn(ctx, userUUID)
	}
	if userUUID == "" {
		userUUID = "minted-visitor-uuid"
	}
	return &model.User{UUID: userUUID, Tier: model.TierFree}, nil
}

type mockSyncer struct {
	syncFn func(ctx context.Context, userUUID string) (int, error)
}

func (m *mockSyncer) SyncItemsForUser(ctx context.Context, userUUID string) (int, error) {
	if m.syncFn != nil {
		return m.syncFn(ctx, userUUID)
	}
	return 0, nil
}

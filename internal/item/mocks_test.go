package item

import (
	"context"
	"strings"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
)

// --- テスト用モック（itemパッケージ共通） ---

// mockItemRepo はItemRepositoryのモック。
type mockItemRepo struct {
	findByIDFn          func(ctx context.Context, id string) (*model.Item, error)
	insertFn            func(ctx context.Context, rec model.CollectedRecord, collectedAt time.Time) (bool, error)
	listWithoutSummFn   func(ctx context.Context, limit int) ([]*model.Item, error)
	updateEnrichmentFn  func(ctx context.Context, itemID, titleTranslated, summary string, tags []string) (bool, error)
	insertedRecords     []model.CollectedRecord
}

func (m *mockItemRepo) FindByID(ctx context.Context, id string) (*model.Item, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockItemRepo) InsertIgnoringDuplicate(ctx context.Context, rec model.CollectedRecord, collectedAt time.Time) (bool, error) {
	m.insertedRecords = append(m.insertedRecords, rec)
	if m.insertFn != nil {
		return m.insertFn(ctx, rec, collectedAt)
	}
	return true, nil
}

func (m *mockItemRepo) ListWithoutSummary(ctx context.Context, limit int) ([]*model.Item, error) {
	if m.listWithoutSummFn != nil {
		return m.listWithoutSummFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockItemRepo) UpdateEnrichment(ctx context.Context, itemID, titleTranslated, summary string, tags []string) (bool, error) {
	if m.updateEnrichmentFn != nil {
		return m.updateEnrichmentFn(ctx, itemID, titleTranslated, summary, tags)
	}
	return true, nil
}

// mockStatusRepo はStatusRepositoryのモック。
type mockStatusRepo struct {
	syncForUserFn       func(ctx context.Context, userUUID string) (int, error)
	listForUserFn       func(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error)
	findByUserAndItemFn func(ctx context.Context, userUUID, itemID string) (*model.UserItemStatus, error)
	reviewFn            func(ctx context.Context, userUUID, itemID string, next model.ReviewStatus, reviewedAt time.Time) (model.ReviewStatus, error)
	expireOlderThanFn   func(ctx context.Context, userUUID string, cutoff time.Time) (int, error)
}

func (m *mockStatusRepo) SyncForUser(ctx context.Context, userUUID string) (int, error) {
	if m.syncForUserFn != nil {
		return m.syncForUserFn(ctx, userUUID)
	}
	return 0, nil
}

func (m *mockStatusRepo) ListForUser(ctx context.Context, userUUID string, status model.ReviewStatus, limit int) ([]model.ItemWithStatus, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userUUID, status, limit)
	}
	return nil, nil
}

func (m *mockStatusRepo) FindByUserAndItem(ctx context.Context, userUUID, itemID string) (*model.UserItemStatus, error) {
	if m.findByUserAndItemFn != nil {
		return m.findByUserAndItemFn(ctx, userUUID, itemID)
	}
	return nil, nil
}

func (m *mockStatusRepo) Review(ctx context.Context, userUUID, itemID string, next model.ReviewStatus, reviewedAt time.Time) (model.ReviewStatus, error) {
	if m.reviewFn != nil {
		return m.reviewFn(ctx, userUUID, itemID, next, reviewedAt)
	}
	return model.StatusNew, nil
}

func (m *mockStatusRepo) ExpireOlderThan(ctx context.Context, userUUID string, cutoff time.Time) (int, error) {
	if m.expireOlderThanFn != nil {
		return m.expireOlderThanFn(ctx, userUUID, cutoff)
	}
	return 0, nil
}

// stubSanitizer はタグ除去の代わりに前後空白のみ除去する軽量スタブ。
type stubSanitizer struct{}

func (s *stubSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(raw)
}

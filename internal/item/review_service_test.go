package item

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
)

// recordingMetrics はレビューメトリクスの記録を検証するスタブ。
type recordingMetrics struct {
	actions []string
}

func (m *recordingMetrics) RecordReview(action string) {
	m.actions = append(m.actions, action)
}

// TestReviewService_ReviewItem はlike操作が台帳へ正しく委譲されることをテストする。
// タグ差分はリポジトリのトランザクション内で解決されるため、
// サービス層からタグリストは渡さない。
func TestReviewService_ReviewItem(t *testing.T) {
	itemRepo := &mockItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Item, error) {
			return &model.Item{ID: id, Tags: []string{"go", "ai"}}, nil
		},
	}

	var gotItemID string
	var gotNext model.ReviewStatus
	var gotReviewedAt time.Time
	statusRepo := &mockStatusRepo{
		reviewFn: func(ctx context.Context, userUUID, itemID string, next model.ReviewStatus, reviewedAt time.Time) (model.ReviewStatus, error) {
			gotItemID = itemID
			gotNext = next
			gotReviewedAt = reviewedAt
			return model.StatusNew, nil
		},
	}
	metrics := &recordingMetrics{}

	svc := NewReviewService(itemRepo, statusRepo, metrics)

	before := time.Now().UTC()
	if err := svc.ReviewItem(context.Background(), "user-1", "item-1", model.ActionLike); err != nil {
		t.Fatalf("ReviewItem() error = %v", err)
	}

	if gotItemID != "item-1" {
		t.Errorf("itemID = %q, want item-1", gotItemID)
	}
	if gotNext != model.StatusLiked {
		t.Errorf("next = %q, want %q", gotNext, model.StatusLiked)
	}
	if gotReviewedAt.Before(before) {
		t.Errorf("reviewedAt = %v, 呼び出し時刻より過去", gotReviewedAt)
	}
	if len(metrics.actions) != 1 || metrics.actions[0] != "like" {
		t.Errorf("metrics.actions = %v, want [like]", metrics.actions)
	}
}

// TestReviewService_ReviewItem_InvalidAction は無効な操作がいかなる変更よりも前に
// 拒否されることをテストする。
func TestReviewService_ReviewItem_InvalidAction(t *testing.T) {
	findCalled := false
	itemRepo := &mockItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Item, error) {
			findCalled = true
			return &model.Item{ID: id}, nil
		},
	}
	reviewCalled := false
	statusRepo := &mockStatusRepo{
		reviewFn: func(ctx context.Context, userUUID, itemID string, next model.ReviewStatus, reviewedAt time.Time) (model.ReviewStatus, error) {
			reviewCalled = true
			return model.StatusNew, nil
		},
	}

	svc := NewReviewService(itemRepo, statusRepo, nil)

	err := svc.ReviewItem(context.Background(), "user-1", "item-1", model.ReviewAction("delete"))
	if err == nil {
		t.Fatal("ReviewItem() error = nil, want INVALID_ACTION")
	}
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeInvalidAction {
		t.Errorf("err = %v, want APIError(INVALID_ACTION)", err)
	}
	if findCalled || reviewCalled {
		t.Error("無効な操作で副作用が発生した")
	}
}

// TestReviewService_ReviewItem_ItemNotFound は存在しないアイテムへのレビューが
// ITEM_NOT_FOUNDエラーになることをテストする。
func TestReviewService_ReviewItem_ItemNotFound(t *testing.T) {
	svc := NewReviewService(&mockItemRepo{}, &mockStatusRepo{}, nil)

	err := svc.ReviewItem(context.Background(), "user-1", "missing", model.ActionSkip)
	if err == nil {
		t.Fatal("ReviewItem() error = nil, want ITEM_NOT_FOUND")
	}
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != model.ErrCodeItemNotFound {
		t.Errorf("err = %v, want APIError(ITEM_NOT_FOUND)", err)
	}
}

// TestReviewService_ReviewItem_NilMetrics はメトリクス未設定でもレビューが
// 成功することをテストする。
func TestReviewService_ReviewItem_NilMetrics(t *testing.T) {
	itemRepo := &mockItemRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Item, error) {
			return &model.Item{ID: id}, nil
		},
	}

	svc := NewReviewService(itemRepo, &mockStatusRepo{}, nil)

	if err := svc.ReviewItem(context.Background(), "user-1", "item-1", model.ActionSkip); err != nil {
		t.Fatalf("ReviewItem() error = %v", err)
	}
}

package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/trendcatch/internal/model"
)

// mockUserRepo はUserRepositoryのモック。
type mockUserRepo struct {
	findByUUIDFn    func(ctx context.Context, uuid string) (*model.User, error)
	createFn        func(ctx context.Context, user *model.User) error
	touchFn         func(ctx context.Context, uuid string, seenAt time.Time) error
	createdUser     *model.User
	touchCalledUUID string
}

func (m *mockUserRepo) FindByUUID(ctx context.Context, uuid string) (*model.User, error) {
	if m.findByUUIDFn != nil {
		return m.findByUUIDFn(ctx, uuid)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	m.createdUser = user
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) TouchLastSeen(ctx context.Context, uuid string, seenAt time.Time) error {
	m.touchCalledUUID = uuid
	if m.touchFn != nil {
		return m.touchFn(ctx, uuid, seenAt)
	}
	return nil
}

// TestService_GetOrCreate_NewVisitor は空UUIDで新規ユーザーが作成されることをテストする。
func TestService_GetOrCreate_NewVisitor(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo)

	got, err := svc.GetOrCreate(context.Background(), "")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if repo.createdUser == nil {
		t.Fatal("新規ユーザーが作成されていない")
	}
	if got.Tier != model.TierFree {
		t.Errorf("Tier = %q, want %q", got.Tier, model.TierFree)
	}
	if _, err := uuid.Parse(got.UUID); err != nil {
		t.Errorf("UUID %q が有効なUUIDではない: %v", got.UUID, err)
	}
	if got.LastSeenAt == nil {
		t.Error("LastSeenAtが設定されていない")
	}
}

// TestService_GetOrCreate_UnknownUUID は未知のUUIDで新しいUUIDが採番されることをテストする。
// クライアントが送ってきた値をそのまま主キーにしない。
func TestService_GetOrCreate_UnknownUUID(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewService(repo)

	got, err := svc.GetOrCreate(context.Background(), "stale-or-forged-uuid")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if got.UUID == "stale-or-forged-uuid" {
		t.Error("未知のUUIDがそのまま採用された（新しいUUIDを採番すべき）")
	}
	if repo.createdUser == nil {
		t.Error("新規ユーザーが作成されていない")
	}
}

// TestService_GetOrCreate_ExistingUser は既存ユーザーが返され、
// last_seen_atが更新されることをテストする。
func TestService_GetOrCreate_ExistingUser(t *testing.T) {
	existing := &model.User{
		UUID:      "existing-uuid",
		Tier:      model.TierSupporter,
		CreatedAt: time.Now().UTC().Add(-24 * time.Hour),
	}
	repo := &mockUserRepo{
		findByUUIDFn: func(ctx context.Context, uuid string) (*model.User, error) {
			if uuid == "existing-uuid" {
				return existing, nil
			}
			return nil, nil
		},
	}
	svc := NewService(repo)

	got, err := svc.GetOrCreate(context.Background(), "existing-uuid")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if got.UUID != "existing-uuid" {
		t.Errorf("UUID = %q, want existing-uuid", got.UUID)
	}
	if got.Tier != model.TierSupporter {
		t.Errorf("Tier = %q, want %q（既存ユーザーのティアを保持する）", got.Tier, model.TierSupporter)
	}
	if repo.createdUser != nil {
		t.Error("既存ユーザーに対してCreateが呼ばれた")
	}
	if repo.touchCalledUUID != "existing-uuid" {
		t.Error("last_seen_atが更新されていない")
	}
}

// TestService_GetOrCreate_RepoError はDB障害時にエラーが伝播することをテストする。
func TestService_GetOrCreate_RepoError(t *testing.T) {
	repo := &mockUserRepo{
		findByUUIDFn: func(ctx context.Context, uuid string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(repo)

	if _, err := svc.GetOrCreate(context.Background(), "some-uuid"); err == nil {
		t.Error("GetOrCreate() error = nil, want error")
	}
}

// TestService_Get_NotFound は存在しないユーザーに対してnilが返ることをテストする。
// 不在は正常な結果でありエラーにしない。
func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	got, err := svc.Get(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

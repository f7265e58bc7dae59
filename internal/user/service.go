// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/repository"
)

// Service はユーザー管理のサービス層。
// 匿名ユーザーの初回作成とアクセス日時の更新を提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// GetOrCreate は指定UUIDのユーザーを解決する。
// UUIDが既知の場合は既存ユーザーを返し、空または未知の場合は
// 新しいUUIDを採番してtier=freeのユーザーを作成する。
// いずれの場合もlast_seen_atを現在時刻へ更新する。
// UUIDが主キーのため、同一UUIDでの再呼び出しが行を重複させることはない。
func (s *Service) GetOrCreate(ctx context.Context, userUUID string) (*model.User, error) {
	now := time.Now().UTC()

	if userUUID != "" {
		existing, err := s.userRepo.FindByUUID(ctx, userUUID)
		if err != nil {
			return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
		}
		if existing != nil {
			if err := s.userRepo.TouchLastSeen(ctx, existing.UUID, now); err != nil {
				return nil, fmt.Errorf("最終アクセス日時の更新に失敗しました: %w", err)
			}
			existing.LastSeenAt = &now
			return existing, nil
		}
	}

	// 未知のUUIDまたは初回アクセス: 新規ユーザーを採番して作成
	newUser := &model.User{
		UUID:       uuid.New().String(),
		Tier:       model.TierFree,
		CreatedAt:  now,
		LastSeenAt: &now,
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("新規ユーザーを作成しました",
		slog.String("user_uuid", newUser.UUID),
	)

	return newUser, nil
}

// Get は指定UUIDのユーザーを返す。見つからない場合はnilを返す。
// ユーザーの不在は正常な結果でありエラーにはしない。
func (s *Service) Get(ctx context.Context, userUUID string) (*model.User, error) {
	return s.userRepo.FindByUUID(ctx, userUUID)
}

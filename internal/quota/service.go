// Package quota はユーザーごとの日次利用回数制限を提供する。
// 無料ユーザーの収集・要約操作をUTC日付単位のカウンタで制限し、
// サポーターは無制限とする。
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/trendcatch/internal/config"
	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/repository"
)

// Unlimited は残り回数が無制限であることを示す値。
const Unlimited = -1

// dateLayout はカウンタの日付キーのフォーマット。UTC基準。
const dateLayout = "2006-01-02"

// QuotaMetrics はクォータ拒否のメトリクス記録インターフェース。
type QuotaMetrics interface {
	RecordQuotaDenied(action string)
}

// Service は日次クォータの判定と加算を行うサービス。
type Service struct {
	rateLimitRepo repository.RateLimitRepository
	userRepo      repository.UserRepository
	limits        config.RateLimits
	metrics       QuotaMetrics
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewService(
	rateLimitRepo repository.RateLimitRepository,
	userRepo repository.UserRepository,
	limits config.RateLimits,
	metrics QuotaMetrics,
) *Service {
	return &Service{
		rateLimitRepo: rateLimitRepo,
		userRepo:      userRepo,
		limits:        limits,
		metrics:       metrics,
	}
}

// today は現在のUTC日付キーを返す。日付が変わるとカウンタ行も変わるため、
// リセット処理は不要（古い行は単に参照されなくなる）。
func today() string {
	return time.Now().UTC().Format(dateLayout)
}

// limitFor は操作種別ごとの日次上限を返す。
func (s *Service) limitFor(action model.QuotaAction) int {
	switch action {
	case model.QuotaCollect:
		return s.limits.CollectPerDay
	case model.QuotaSummarize:
		return s.limits.SummarizePerDay
	default:
		return 0
	}
}

// Check は指定操作が本日まだ実行可能かを判定し、許可フラグと残り回数を返す。
// サポーターは常に許可され、残り回数はUnlimited(-1)になる。
// カウンタ行が存在しない日は使用回数0として扱う。
// 判定のみでカウンタは変更しない。
func (s *Service) Check(ctx context.Context, userUUID string, action model.QuotaAction) (bool, int, error) {
	if !action.IsValid() {
		return false, 0, fmt.Errorf("未知のクォータ操作です: %s", action)
	}

	user, err := s.userRepo.FindByUUID(ctx, userUUID)
	if err != nil {
		return false, 0, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return false, 0, model.NewUserNotFoundError()
	}

	if user.Tier == model.TierSupporter {
		return true, Unlimited, nil
	}

	counter, err := s.rateLimitRepo.FindByUserAndDate(ctx, userUUID, today())
	if err != nil {
		return false, 0, fmt.Errorf("利用回数の取得に失敗しました: %w", err)
	}

	used := 0
	if counter != nil {
		switch action {
		case model.QuotaCollect:
			used = counter.CollectCount
		case model.QuotaSummarize:
			used = counter.SummarizeCount
		}
	}

	limit := s.limitFor(action)
	remaining := limit - used
	if remaining <= 0 {
		if s.metrics != nil {
			s.metrics.RecordQuotaDenied(string(action))
		}
		return false, 0, nil
	}

	return true, remaining, nil
}

// Increment は指定操作の本日のカウンタを1加算する。
// サポーターはカウンタを持たないため何もしない。
// その日最初の呼び出しでカウンタ行を作成する（upsert）。
func (s *Service) Increment(ctx context.Context, userUUID string, action model.QuotaAction) error {
	if !action.IsValid() {
		return fmt.Errorf("未知のクォータ操作です: %s", action)
	}

	user, err := s.userRepo.FindByUUID(ctx, userUUID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if user.Tier == model.TierSupporter {
		return nil
	}

	if err := s.rateLimitRepo.Increment(ctx, userUUID, today(), action); err != nil {
		return fmt.Errorf("利用回数の加算に失敗しました: %w", err)
	}

	return nil
}

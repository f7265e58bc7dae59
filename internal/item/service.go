// Package item はアイテムカタログの管理機能を提供する。
package item

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
	"github.com/hitoshi/trendcatch/internal/repository"
	"github.com/hitoshi/trendcatch/internal/security"
)

// ItemService はアイテムの保存・取得のサービス。
// 収集したレコードを(source, external_id)で重複排除しながら永続化する。
type ItemService struct {
	itemRepo  repository.ItemRepository
	sanitizer security.ContentSanitizerService
}

// NewItemService はItemServiceの新しいインスタンスを生成する。
func NewItemService(
	itemRepo repository.ItemRepository,
	sanitizer security.ContentSanitizerService,
) *ItemService {
	return &ItemService{
		itemRepo:  itemRepo,
		sanitizer: sanitizer,
	}
}

// SaveItems は収集レコードのバッチを重複排除しながら保存する。
// (source, external_id)が既存のレコードは黙ってスキップされ、
// 先に保存されたタイトル・URLが常に優先される。
// 必須フィールド欠落などの不正レコードはログに記録してスキップ扱いとし、
// バッチ全体は失敗させない。重複するバッチでの再呼び出しは安全（冪等）。
// Inserted + Skipped == Total が常に成立する。
func (s *ItemService) SaveItems(ctx context.Context, records []model.CollectedRecord) (model.SaveResult, error) {
	result := model.SaveResult{Total: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	now := time.Now().UTC()

	for _, rec := range records {
		if rec.Source == "" || rec.ExternalID == "" || rec.Title == "" {
			slog.Warn("不正な収集レコードをスキップしました",
				slog.String("source", rec.Source),
				slog.String("external_id", rec.ExternalID),
			)
			result.Skipped++
			continue
		}

		rec.Title = s.sanitizer.Sanitize(rec.Title)

		inserted, err := s.itemRepo.InsertIgnoringDuplicate(ctx, rec, now)
		if err != nil {
			// 1件の失敗でバッチ全体を失敗させない
			slog.Warn("アイテムの挿入に失敗しました",
				slog.String("source", rec.Source),
				slog.String("external_id", rec.ExternalID),
				slog.String("error", err.Error()),
			)
			result.Skipped++
			continue
		}

		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	slog.Info("アイテムを保存しました",
		slog.Int("total", result.Total),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
	)

	return result, nil
}

// GetItem は指定IDのアイテムを取得する。見つからない場合はnilを返す。
func (s *ItemService) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	return s.itemRepo.FindByID(ctx, itemID)
}

package summarizer

import (
	"context"
	"log/slog"

	"github.com/hitoshi/trendcatch/internal/repository"
	"github.com/hitoshi/trendcatch/internal/security"
)

// Enricher は1アイテムのエンリッチを行うインターフェース。
// Clientが実装する。テストではモックに差し替える。
type Enricher interface {
	Summarize(ctx context.Context, title, url string) (*Enrichment, error)
}

// SummarizeMetrics は要約処理のメトリクス記録インターフェース。
type SummarizeMetrics interface {
	RecordSummarize(success bool)
}

// BatchResult は1回の要約バッチの実行結果。
type BatchResult struct {
	Total      int `json:"total"`
	Summarized int `json:"summarized"`
	Failed     int `json:"failed"`
}

// Service は未要約アイテムのバッチエンリッチを行うサービス。
type Service struct {
	itemRepo  repository.ItemRepository
	enricher  Enricher
	sanitizer security.ContentSanitizerService
	metrics   SummarizeMetrics
}

// NewService はServiceの新しいインスタンスを生成する。
// enricherがnilの場合、SummarizeNewItemsは何もせず空の結果を返す。
// metricsはnilでもよい。
func NewService(
	itemRepo repository.ItemRepository,
	enricher Enricher,
	sanitizer security.ContentSanitizerService,
	metrics SummarizeMetrics,
) *Service {
	return &Service{
		itemRepo:  itemRepo,
		enricher:  enricher,
		sanitizer: sanitizer,
		metrics:   metrics,
	}
}

// Enabled は要約機能が利用可能かを返す。
// APIキー未設定で起動した場合はfalseになる。
func (s *Service) Enabled() bool {
	return s.enricher != nil
}

// SummarizeNewItems は未要約アイテムを最大limit件エンリッチする。
// 1件の失敗はカウントして残りの処理を続行する。
// エンリッチ結果はサニタイズしてから保存する。
func (s *Service) SummarizeNewItems(ctx context.Context, limit int) (BatchResult, error) {
	var result BatchResult

	if s.enricher == nil {
		slog.Warn("要約APIキーが未設定のため要約をスキップします")
		return result, nil
	}

	items, err := s.itemRepo.ListWithoutSummary(ctx, limit)
	if err != nil {
		return result, err
	}
	result.Total = len(items)

	for _, item := range items {
		enrichment, err := s.enricher.Summarize(ctx, item.Title, item.URL)
		if err != nil {
			slog.Warn("アイテムの要約に失敗しました",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()),
			)
			result.Failed++
			if s.metrics != nil {
				s.metrics.RecordSummarize(false)
			}
			continue
		}

		titleJa := s.sanitizer.Sanitize(enrichment.TitleTranslated)
		summary := s.sanitizer.Sanitize(enrichment.Summary)

		updated, err := s.itemRepo.UpdateEnrichment(ctx, item.ID, titleJa, summary, enrichment.Tags)
		if err != nil {
			slog.Warn("エンリッチ結果の保存に失敗しました",
				slog.String("item_id", item.ID),
				slog.String("error", err.Error()),
			)
			result.Failed++
			if s.metrics != nil {
				s.metrics.RecordSummarize(false)
			}
			continue
		}
		if !updated {
			// 並行削除等で行が消えた場合。失敗扱いにはしない
			continue
		}

		result.Summarized++
		if s.metrics != nil {
			s.metrics.RecordSummarize(true)
		}
	}

	slog.Info("要約バッチが完了しました",
		slog.Int("total", result.Total),
		slog.Int("summarized", result.Summarized),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}

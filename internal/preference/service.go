// Package preference はユーザーごとのタグ選好スコアの読み取りを提供する。
// スコアの書き込みはレビュー操作のトランザクション内でのみ行われるため、
// このパッケージに書き込み経路は存在しない。台帳の履歴とスコアの整合性は
// 構造的に保証される。
package preference

import (
	"context"
	"sort"

	"github.com/hitoshi/trendcatch/internal/repository"
)

// Service はタグ選好スコアのサービス層。
type Service struct {
	prefRepo repository.PreferenceRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(prefRepo repository.PreferenceRepository) *Service {
	return &Service{prefRepo: prefRepo}
}

// GetUserPreferences はユーザーがこれまでに触れた全タグのスコアをマップで返す。
// 1度もlike/skipしていないタグは暗黙に0であり、マップには含まれない。
func (s *Service) GetUserPreferences(ctx context.Context, userUUID string) (map[string]int, error) {
	return s.prefRepo.MapByUser(ctx, userUUID)
}

// TagScore はタグとスコアのペア。統計表示用。
type TagScore struct {
	Tag   string
	Score int
}

// Stats は選好スコアを正・負・中立に分類した統計情報。
type Stats struct {
	Positive []TagScore
	Negative []TagScore
	Neutral  []TagScore
	Total    int
}

// GetStats はユーザーの選好スコアをスコア降順で正・負・中立に分類して返す。
func (s *Service) GetStats(ctx context.Context, userUUID string) (*Stats, error) {
	prefs, err := s.prefRepo.MapByUser(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	sorted := make([]TagScore, 0, len(prefs))
	for tag, score := range prefs {
		sorted = append(sorted, TagScore{Tag: tag, Score: score})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Tag < sorted[j].Tag
	})

	stats := &Stats{Total: len(sorted)}
	for _, ts := range sorted {
		switch {
		case ts.Score > 0:
			stats.Positive = append(stats.Positive, ts)
		case ts.Score < 0:
			stats.Negative = append(stats.Negative, ts)
		default:
			stats.Neutral = append(stats.Neutral, ts)
		}
	}

	return stats, nil
}

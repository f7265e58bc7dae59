// Package cleanup は未レビューアイテムの期限切れ処理ジョブを提供する。
// 収集から一定日数を超えたstatus='new'の台帳行を全ユーザー横断で
// expiredへ遷移させる日次バッチ。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// ExpireMetrics は期限切れ遷移のメトリクス記録インターフェース。
type ExpireMetrics interface {
	RecordExpired(count int)
}

// ExpireJob は古い未レビューアイテムの期限切れ遷移ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な遷移処理を保証する。
// レビュー済み（liked/skipped）の行は対象外で、選好スコアにも影響しない。
type ExpireJob struct {
	db         Executor
	logger     *slog.Logger
	metrics    ExpireMetrics
	ExpireDays int // 未レビューアイテムの保持日数
}

// NewExpireJob は新しいExpireJobを生成する。
// デフォルトの保持日数は14日。metricsはnilでもよい。
func NewExpireJob(db Executor, logger *slog.Logger, metrics ExpireMetrics) *ExpireJob {
	return &ExpireJob{
		db:         db,
		logger:     logger,
		metrics:    metrics,
		ExpireDays: 14,
	}
}

// Run は保持日数を超過した未レビューの台帳行をexpiredへ遷移させる。
// アイテムのcollected_atを基準とするため、全ユーザーで同時に期限切れになる。
// 冪等: 対象がない場合でもエラーにならない。
func (j *ExpireJob) Run(ctx context.Context) error {
	start := time.Now()

	interval := fmt.Sprintf("%d days", j.ExpireDays)

	query := `
		UPDATE user_item_statuses
		SET status = 'expired', updated_at = now()
		WHERE status = 'new'
		  AND item_id IN (
			SELECT id FROM items WHERE collected_at < now() - $1::interval
		  )`
	result, err := j.db.ExecContext(ctx, query, interval)
	if err != nil {
		j.logger.Error("期限切れジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("expire_days", j.ExpireDays),
		)
		return fmt.Errorf("期限切れ遷移の実行に失敗しました: %w", err)
	}

	expiredCount, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("遷移件数の取得に失敗しました: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordExpired(int(expiredCount))
	}

	duration := time.Since(start)
	j.logger.Info("期限切れジョブが完了しました",
		slog.Int64("expired_count", expiredCount),
		slog.Int("expire_days", j.ExpireDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// StartDaily は24時間間隔で期限切れジョブを繰り返し実行する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *ExpireJob) StartDaily(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	// 起動直後に1回実行
	if err := j.Run(ctx); err != nil {
		j.logger.Error("期限切れジョブの初回実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("期限切れジョブを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("期限切れジョブの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

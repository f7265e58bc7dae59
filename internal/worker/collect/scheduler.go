// Package collect はトレンドアイテムのバックグラウンド収集処理を提供する。
// 定期収集スケジューラと収集後の要約バッチ実行を含む。
package collect

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/trendcatch/internal/collector"
	"github.com/hitoshi/trendcatch/internal/summarizer"
)

// CollectRunner は収集サイクル実行のインターフェース。
type CollectRunner interface {
	CollectAll(ctx context.Context) *collector.CollectSummary
}

// SummarizeRunner は要約バッチ実行のインターフェース。
type SummarizeRunner interface {
	Enabled() bool
	SummarizeNewItems(ctx context.Context, limit int) (summarizer.BatchResult, error)
}

// Scheduler は定期収集サイクルのスケジューラ。
// 指定間隔のティッカーで全ソースの収集を実行し、
// 続けて新規アイテムの要約バッチを実行する。
type Scheduler struct {
	runner         CollectRunner
	summarizer     SummarizeRunner
	logger         *slog.Logger
	summarizeBatch int
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
func NewScheduler(
	runner CollectRunner,
	summarizeRunner SummarizeRunner,
	logger *slog.Logger,
	summarizeBatch int,
) *Scheduler {
	return &Scheduler{
		runner:         runner,
		summarizer:     summarizeRunner,
		logger:         logger,
		summarizeBatch: summarizeBatch,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("収集スケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	// 起動直後に1回実行
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("収集スケジューラを停止しました")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce は収集サイクルと要約バッチを1回実行する。
// 収集の失敗はソース単位で記録済みのため、ここではエラーを返さない。
func (s *Scheduler) RunOnce(ctx context.Context) {
	summary := s.runner.CollectAll(ctx)

	if !s.summarizer.Enabled() {
		return
	}

	// 新規アイテムがなくても未要約の積み残しを処理する
	if _, err := s.summarizer.SummarizeNewItems(ctx, s.summarizeBatch); err != nil {
		s.logger.Error("要約バッチの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("収集サイクルとエンリッチが完了しました",
		slog.Int("total_inserted", summary.TotalInserted),
	)
}

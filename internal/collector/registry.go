package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/trendcatch/internal/model"
)

// ItemSaver は収集レコードの保存インターフェース。
type ItemSaver interface {
	SaveItems(ctx context.Context, records []model.CollectedRecord) (model.SaveResult, error)
}

// CollectMetrics は収集処理のメトリクス記録インターフェース。
type CollectMetrics interface {
	RecordCollect(source string, inserted, skipped int)
	RecordCollectError(source string)
}

// SourceResult は1つのソースの収集結果。
type SourceResult struct {
	Source   string `json:"source"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// CollectSummary は1回の収集サイクル全体の結果。
type CollectSummary struct {
	Results       []SourceResult `json:"results"`
	TotalInserted int            `json:"total_inserted"`
	DurationMs    int64          `json:"duration_ms"`
}

// entry は登録されたコレクターと取得件数のペア。
type entry struct {
	collector Collector
	count     int
}

// Registry は全コレクターを束ね、収集サイクルを実行する。
type Registry struct {
	entries []entry
	saver   ItemSaver
	metrics CollectMetrics
}

// NewRegistry はRegistryの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewRegistry(saver ItemSaver, metrics CollectMetrics) *Registry {
	return &Registry{
		saver:   saver,
		metrics: metrics,
	}
}

// Register はコレクターを取得件数とともに登録する。
func (r *Registry) Register(c Collector, count int) {
	r.entries = append(r.entries, entry{collector: c, count: count})
}

// CollectAll は登録された全コレクターを順に実行し、取得レコードを保存する。
// 1つのソースの失敗は結果に記録して残りの収集を続行する。
// 全ソースが失敗してもエラーは返さず、結果のErrorフィールドで報告する。
func (r *Registry) CollectAll(ctx context.Context) *CollectSummary {
	start := time.Now()
	summary := &CollectSummary{
		Results: make([]SourceResult, 0, len(r.entries)),
	}

	for _, e := range r.entries {
		source := e.collector.Source()
		result := SourceResult{Source: source}

		records, err := e.collector.FetchItems(ctx, e.count)
		if err != nil {
			slog.Error("ソースの収集に失敗しました",
				slog.String("source", source),
				slog.String("error", err.Error()),
			)
			result.Error = err.Error()
			if r.metrics != nil {
				r.metrics.RecordCollectError(source)
			}
			summary.Results = append(summary.Results, result)
			continue
		}
		result.Fetched = len(records)

		saved, err := r.saver.SaveItems(ctx, records)
		if err != nil {
			slog.Error("収集レコードの保存に失敗しました",
				slog.String("source", source),
				slog.String("error", err.Error()),
			)
			result.Error = err.Error()
			if r.metrics != nil {
				r.metrics.RecordCollectError(source)
			}
			summary.Results = append(summary.Results, result)
			continue
		}

		result.Inserted = saved.Inserted
		result.Skipped = saved.Skipped
		summary.TotalInserted += saved.Inserted
		if r.metrics != nil {
			r.metrics.RecordCollect(source, saved.Inserted, saved.Skipped)
		}

		summary.Results = append(summary.Results, result)
	}

	summary.DurationMs = time.Since(start).Milliseconds()

	slog.Info("収集サイクルが完了しました",
		slog.Int("sources", len(summary.Results)),
		slog.Int("total_inserted", summary.TotalInserted),
		slog.Int64("duration_ms", summary.DurationMs),
	)

	return summary
}

// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordCollect(source string, inserted, skipped int)
	RecordCollectError(source string)
	RecordSummarize(success bool)
	RecordReview(action string)
	RecordQuotaDenied(action string)
	RecordExpired(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	itemsInserted  *prometheus.CounterVec
	itemsSkipped   *prometheus.CounterVec
	collectErrors  *prometheus.CounterVec
	summarizeOK    prometheus.Counter
	summarizeFail  prometheus.Counter
	reviews        *prometheus.CounterVec
	quotaDenied    *prometheus.CounterVec
	statusesExpired prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		itemsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcatch_items_inserted_total",
			Help: "ソース別の新規保存アイテムの合計数",
		}, []string{"source"}),
		itemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcatch_items_skipped_total",
			Help: "ソース別の重複スキップアイテムの合計数",
		}, []string{"source"}),
		collectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcatch_collect_errors_total",
			Help: "ソース別の収集失敗の合計数",
		}, []string{"source"}),
		summarizeOK: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendcatch_summarize_success_total",
			Help: "要約成功の合計数",
		}),
		summarizeFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendcatch_summarize_fail_total",
			Help: "要約失敗の合計数",
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcatch_reviews_total",
			Help: "操作別のレビュー実行の合計数",
		}, []string{"action"}),
		quotaDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendcatch_quota_denied_total",
			Help: "操作別の日次クォータ拒否の合計数",
		}, []string{"action"}),
		statusesExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendcatch_statuses_expired_total",
			Help: "期限切れ遷移した台帳行の合計数",
		}),
	}

	reg.MustRegister(
		c.itemsInserted,
		c.itemsSkipped,
		c.collectErrors,
		c.summarizeOK,
		c.summarizeFail,
		c.reviews,
		c.quotaDenied,
		c.statusesExpired,
	)

	return c
}

// RecordCollect は1ソースの収集結果を記録する。
func (c *Collector) RecordCollect(source string, inserted, skipped int) {
	c.itemsInserted.WithLabelValues(source).Add(float64(inserted))
	c.itemsSkipped.WithLabelValues(source).Add(float64(skipped))
}

// RecordCollectError は収集失敗を記録する。
func (c *Collector) RecordCollectError(source string) {
	c.collectErrors.WithLabelValues(source).Inc()
}

// RecordSummarize は要約の成否を記録する。
func (c *Collector) RecordSummarize(success bool) {
	if success {
		c.summarizeOK.Inc()
	} else {
		c.summarizeFail.Inc()
	}
}

// RecordReview はレビュー操作を記録する。
func (c *Collector) RecordReview(action string) {
	c.reviews.WithLabelValues(action).Inc()
}

// RecordQuotaDenied は日次クォータによる拒否を記録する。
func (c *Collector) RecordQuotaDenied(action string) {
	c.quotaDenied.WithLabelValues(action).Inc()
}

// RecordExpired は期限切れ遷移した台帳行数を記録する。
func (c *Collector) RecordExpired(count int) {
	c.statusesExpired.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

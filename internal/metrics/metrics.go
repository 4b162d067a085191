// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン試行の結果ラベル
const (
	LoginSucceeded = "success"
	LoginFailed    = "invalid_credentials"
	LoginError     = "error"
)

// エンリッチメント結果ラベル
const (
	EnrichSucceeded = "success"
	EnrichFailed    = "failed"
	EnrichSkipped   = "skipped"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordLoginAttempt(outcome string)
	RecordTokenRejected(reason string)
	RecordTaskOperation(operation, outcome string)
	RecordEnrichment(outcome string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	loginAttempts  *prometheus.CounterVec
	tokensRejected *prometheus.CounterVec
	taskOperations *prometheus.CounterVec
	enrichments    *prometheus.CounterVec
	enrichLatency  prometheus.Histogram
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tocook_http_requests_total",
			Help: "ルート・メソッド・ステータス別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tocook_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tocook_login_attempts_total",
			Help: "結果別のログイン試行数",
		}, []string{"outcome"}),
		tokensRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tocook_tokens_rejected_total",
			Help: "理由別の拒否されたアクセストークン数",
		}, []string{"reason"}),
		taskOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tocook_task_operations_total",
			Help: "操作・結果別のタスク操作数",
		}, []string{"operation", "outcome"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tocook_enrichments_total",
			Help: "結果別の説明文エンリッチメント数",
		}, []string{"outcome"}),
		enrichLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tocook_enrichment_latency_seconds",
			Help:    "説明文エンリッチメントのレイテンシ（秒）",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.loginAttempts,
		c.tokensRejected,
		c.taskOperations,
		c.enrichments,
		c.enrichLatency,
	)

	return c
}

// NewRegistry はGoランタイムとプロセスのコレクターを登録済みのレジストリを生成する。
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLoginAttempt はログイン試行を記録する。
func (c *Collector) RecordLoginAttempt(outcome string) {
	c.loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordTokenRejected はトークン拒否を記録する。
func (c *Collector) RecordTokenRejected(reason string) {
	c.tokensRejected.WithLabelValues(reason).Inc()
}

// RecordTaskOperation はタスク操作を記録する。
func (c *Collector) RecordTaskOperation(operation, outcome string) {
	c.taskOperations.WithLabelValues(operation, outcome).Inc()
}

// RecordEnrichment はエンリッチメントの結果を記録する。
// スキップ時はレイテンシを記録しない。
func (c *Collector) RecordEnrichment(outcome string, duration time.Duration) {
	c.enrichments.WithLabelValues(outcome).Inc()
	if outcome != EnrichSkipped {
		c.enrichLatency.Observe(duration.Seconds())
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

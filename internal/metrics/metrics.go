// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 物件一覧の取得、物件の作成、画像アップロードの結果を記録する。
type Collector struct {
	listFetchSuccess  prometheus.Counter
	listFetchFail     prometheus.Counter
	listFetchLatency  prometheus.Histogram
	propertyCreated   prometheus.Counter
	propertyCreateErr prometheus.Counter
	uploadSuccess     prometheus.Counter
	uploadFail        prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		listFetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqar_list_fetch_success_total",
			Help: "物件一覧取得成功の合計数",
		}),
		listFetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqar_list_fetch_fail_total",
			Help: "物件一覧取得失敗の合計数（リトライ後の最終失敗）",
		}),
		listFetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aqar_list_fetch_latency_seconds",
			Help:    "物件一覧取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		propertyCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqar_property_created_total",
			Help: "作成された物件の合計数",
		}),
		propertyCreateErr: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqar_property_create_fail_total",
			Help: "物件作成失敗の合計数",
		}),
		uploadSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqar_image_upload_success_total",
			Help: "画像アップロード成功の合計数（ファイル単位）",
		}),
		uploadFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aqar_image_upload_fail_total",
			Help: "画像アップロード失敗の合計数（ファイル単位）",
		}),
	}

	reg.MustRegister(
		c.listFetchSuccess,
		c.listFetchFail,
		c.listFetchLatency,
		c.propertyCreated,
		c.propertyCreateErr,
		c.uploadSuccess,
		c.uploadFail,
	)

	return c
}

// RecordListFetchSuccess は物件一覧取得成功を記録する。
func (c *Collector) RecordListFetchSuccess() {
	c.listFetchSuccess.Inc()
}

// RecordListFetchFailure は物件一覧取得失敗を記録する。
func (c *Collector) RecordListFetchFailure() {
	c.listFetchFail.Inc()
}

// RecordListFetchLatency は物件一覧取得のレイテンシを記録する。
func (c *Collector) RecordListFetchLatency(duration time.Duration) {
	c.listFetchLatency.Observe(duration.Seconds())
}

// RecordPropertyCreated は物件作成成功を記録する。
func (c *Collector) RecordPropertyCreated() {
	c.propertyCreated.Inc()
}

// RecordPropertyCreateFailure は物件作成失敗を記録する。
func (c *Collector) RecordPropertyCreateFailure() {
	c.propertyCreateErr.Inc()
}

// RecordUploadSuccess は画像アップロード成功をファイル単位で記録する。
func (c *Collector) RecordUploadSuccess() {
	c.uploadSuccess.Inc()
}

// RecordUploadFailure は画像アップロード失敗をファイル単位で記録する。
func (c *Collector) RecordUploadFailure() {
	c.uploadFail.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nesttask"

// Metrics 应用级 Prometheus 指标
// 所有方法对 nil 接收者安全，测试与 CLI 场景可直接传 nil
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	importOutcomes *prometheus.CounterVec
	importInserted prometheus.Counter
	importBatch    prometheus.Histogram
}

// New 创建并注册指标
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		importOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "course_import",
			Name:      "outcomes_total",
			Help:      "Per-row outcomes recorded by the course bulk import, by kind.",
		}, []string{"kind"}),
		importInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "course_import",
			Name:      "inserted_total",
			Help:      "Courses inserted by the bulk import.",
		}),
		importBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "course_import",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a full bulk import batch.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	reg.MustRegister(m.httpRequests, m.httpLatency, m.importOutcomes, m.importInserted, m.importBatch)
	return m
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// ObserveImportOutcome 记录一条导入结果（abort / error / warning）
func (m *Metrics) ObserveImportOutcome(kind string) {
	if m == nil {
		return
	}
	m.importOutcomes.WithLabelValues(kind).Inc()
}

// ObserveImportInserted 记录一条成功写入的课程
func (m *Metrics) ObserveImportInserted() {
	if m == nil {
		return
	}
	m.importInserted.Inc()
}

// ObserveImportBatch 记录整批导入耗时
func (m *Metrics) ObserveImportBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.importBatch.Observe(d.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 指标管理器。nil *Metrics 上的所有方法都是空操作，便于测试。
type Metrics struct {
	// HTTP请求指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 事件状态流转
	transitionsTotal *prometheus.CounterVec

	// 推送指标
	pushSendsTotal    *prometheus.CounterVec
	pushSendDuration  prometheus.Histogram
	pushTokensPruned  prometheus.Counter
	dispatchesTotal   *prometheus.CounterVec
	dispatchQueueSize prometheus.Gauge
	dispatchDropped   prometheus.Counter
}

// NewMetrics registers every collector on reg; pass prometheus.NewRegistry()
// in tests to keep registrations isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		transitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_status_transitions_total",
				Help: "Committed event status transitions",
			},
			[]string{"from", "to", "source"},
		),
		pushSendsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "push_sends_total",
				Help: "Push sends by outcome (delivered, transient, fatal)",
			},
			[]string{"outcome"},
		),
		pushSendDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "push_send_duration_seconds",
				Help:    "Single device push latency",
				Buckets: prometheus.DefBuckets,
			},
		),
		pushTokensPruned: f.NewCounter(
			prometheus.CounterOpts{
				Name: "push_tokens_pruned_total",
				Help: "Device tokens deleted after a fatal gateway answer",
			},
		),
		dispatchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_dispatches_total",
				Help: "Notification dispatch jobs by kind",
			},
			[]string{"kind"},
		),
		dispatchQueueSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "notification_queue_depth",
				Help: "Jobs waiting in the dispatch queue",
			},
		),
		dispatchDropped: f.NewCounter(
			prometheus.CounterOpts{
				Name: "notification_queue_dropped_total",
				Help: "Dispatch jobs dropped because the queue was full or closed",
			},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) ObserveTransition(from, to, source string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to, source).Inc()
}

// ObservePush outcome is one of delivered, transient, fatal.
func (m *Metrics) ObservePush(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pushSendsTotal.WithLabelValues(outcome).Inc()
	m.pushSendDuration.Observe(duration.Seconds())
}

func (m *Metrics) TokenPruned() {
	if m == nil {
		return
	}
	m.pushTokensPruned.Inc()
}

func (m *Metrics) DispatchDone(kind string) {
	if m == nil {
		return
	}
	m.dispatchesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.dispatchQueueSize.Set(float64(n))
}

func (m *Metrics) DispatchDropped() {
	if m == nil {
		return
	}
	m.dispatchDropped.Inc()
}

// Package metrics 基于 Prometheus 的运行时指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	metricsiface "github.com/polymesh/engine/pkg/interfaces/infrastructure/metrics"
)

const namespace = "pmengine"

var _ metricsiface.Recorder = (*Metrics)(nil)

// Metrics 指标集合，使用独立注册表
type Metrics struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	blockHeight      prometheus.Gauge
	eventsTotal      *prometheus.CounterVec
	complianceTotal  *prometheus.CounterVec
	httpTotal        *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New 创建指标集合，同时注册 Go 运行时采集器
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		dispatchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runtime",
			Name:      "dispatch_total",
			Help:      "Total number of dispatched calls",
		}, []string{"call", "result"}),
		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "runtime",
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatched call duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"call"}),
		blockHeight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "runtime",
			Name:      "block_height",
			Help:      "Current block number",
		}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runtime",
			Name:      "events_total",
			Help:      "Total number of committed events",
		}, []string{"module", "name"}),
		complianceTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compliance",
			Name:      "checks_total",
			Help:      "Total number of compliance checks",
		}, []string{"result"}),
		httpTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "path"}),
	}
}

// ObserveDispatch 记录调用
func (m *Metrics) ObserveDispatch(call string, result string, d time.Duration) {
	m.dispatchTotal.WithLabelValues(call, result).Inc()
	m.dispatchDuration.WithLabelValues(call).Observe(d.Seconds())
}

// SetBlockHeight 记录区块高度
func (m *Metrics) SetBlockHeight(height uint64) {
	m.blockHeight.Set(float64(height))
}

// IncEvent 记录事件
func (m *Metrics) IncEvent(module, name string) {
	m.eventsTotal.WithLabelValues(module, name).Inc()
}

// ObserveComplianceCheck 记录合规检查结果
func (m *Metrics) ObserveComplianceCheck(passed bool) {
	result := "rejected"
	if passed {
		result = "passed"
	}
	m.complianceTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP 记录 HTTP 请求
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	m.httpTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Registry 底层注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// nopRecorder 丢弃所有指标
type nopRecorder struct{}

// NewNop 不记录任何指标的 Recorder
func NewNop() metricsiface.Recorder { return nopRecorder{} }

func (nopRecorder) ObserveDispatch(string, string, time.Duration)  {}
func (nopRecorder) SetBlockHeight(uint64)                          {}
func (nopRecorder) IncEvent(string, string)                        {}
func (nopRecorder) ObserveComplianceCheck(bool)                    {}
func (nopRecorder) ObserveHTTP(string, string, int, time.Duration) {}

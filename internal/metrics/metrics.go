package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はusecaseが使う業務メトリクス
type Recorder interface {
	Checkout(result string)
	Transition(transition, result string)
}

// テスト用
type Nop struct{}

func (Nop) Checkout(string)           {}
func (Nop) Transition(string, string) {}

type Metrics struct {
	gatherer prometheus.Gatherer

	Requests    *prometheus.CounterVec
	LatencyMS   *prometheus.HistogramVec
	Checkouts   *prometheus.CounterVec
	Transitions *prometheus.CounterVec
}

// reg には prometheus.NewRegistry() を渡す（テストごとに独立させる）
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketplace",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method", "path"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result (ok or error code).",
		}, []string{"result"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketplace",
			Name:      "order_transitions_total",
			Help:      "Order status transitions by name and result.",
		}, []string{"transition", "result"}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.Checkouts, m.Transitions)
	return m
}

func (m *Metrics) Checkout(result string) {
	m.Checkouts.WithLabelValues(result).Inc()
}

func (m *Metrics) Transition(transition, result string) {
	m.Transitions.WithLabelValues(transition, result).Inc()
}

// pathはルートのパターン（/orders/:id）を渡す
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	m.Requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(method, path).Observe(float64(elapsed) / float64(time.Millisecond))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus метрики выполнения графа.
//
// Методы безопасны для nil-получателя: без метрик движок работает так же.
type Metrics struct {
	runs           *prometheus.CounterVec
	nodeExecutions *prometheus.CounterVec
	nodeDuration   *prometheus.HistogramVec
	events         *prometheus.CounterVec
	eventsDropped  prometheus.Counter
	httpRequests   *prometheus.CounterVec
}

// NewMetrics регистрирует метрики в reg.
// Для тестов передаётся prometheus.NewRegistry(), в сервисе — prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowcraft_runs_total",
			Help: "Total workflow runs by result",
		}, []string{"result"}),

		nodeExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowcraft_node_executions_total",
			Help: "Total node executions by activity type and status",
		}, []string{"activity", "status"}),

		nodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowcraft_node_duration_seconds",
			Help:    "Activity compute duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"activity"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowcraft_events_total",
			Help: "Total event log entries by status",
		}, []string{"status"}),

		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "flowcraft_events_dropped_total",
			Help: "Events dropped for slow subscribers",
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "flowcraft_api_http_requests_total",
			Help: "Total HTTP requests handled by flowcraft-api",
		}, []string{"method", "status"}),
	}
}

// ObserveRun учитывает завершённый запуск.
func (m *Metrics) ObserveRun(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
}

// ObserveNode учитывает выполнение узла.
func (m *Metrics) ObserveNode(activityType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.nodeExecutions.WithLabelValues(activityType, status).Inc()
	m.nodeDuration.WithLabelValues(activityType).Observe(d.Seconds())
}

// ObserveEvent учитывает запись в журнал событий.
func (m *Metrics) ObserveEvent(status string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(status).Inc()
}

// ObserveDropped учитывает событие, не доставленное подписчику.
func (m *Metrics) ObserveDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

// ObserveHTTP учитывает HTTP запрос.
func (m *Metrics) ObserveHTTP(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, httpStatusClass(status)).Inc()
}

func httpStatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. All methods are
// safe on a nil receiver so components can run without metrics.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	dbQueryDuration  *prometheus.HistogramVec
	snapshotFailures *prometheus.CounterVec
	widgetPushes     *prometheus.CounterVec
	widgetClients    prometheus.Gauge
	subjectsTotal    prometheus.Gauge
	homeworkOpen     prometheus.Gauge
	exportsTotal     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	snapshotFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_save_failures_total",
		Help: "Snapshot writes that failed and were kept only in memory",
	}, []string{"key"})

	widgetPushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "widget_pushes_total",
		Help: "Widget sync pushes by sink and outcome",
	}, []string{"sink", "outcome"})

	widgetClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "widget_stream_clients",
		Help: "Connected widget stream clients",
	})

	subjectsTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_subjects",
		Help: "Subjects currently in the timetable",
	})

	homeworkOpen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "homework_open",
		Help: "Homework items not yet completed",
	})

	exportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_total",
		Help: "Exports by format and delivery method",
	}, []string{"format", "method"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, dbQueryDuration, snapshotFailures, widgetPushes,
		widgetClients, subjectsTotal, homeworkOpen, exportsTotal, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		dbQueryDuration:  dbQueryDuration,
		snapshotFailures: snapshotFailures,
		widgetPushes:     widgetPushes,
		widgetClients:    widgetClients,
		subjectsTotal:    subjectsTotal,
		homeworkOpen:     homeworkOpen,
		exportsTotal:     exportsTotal,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordSnapshotFailure counts a snapshot write that did not persist.
func (m *MetricsService) RecordSnapshotFailure(key string) {
	if m == nil {
		return
	}
	m.snapshotFailures.WithLabelValues(key).Inc()
}

// RecordWidgetPush counts a widget push outcome for a sink.
func (m *MetricsService) RecordWidgetPush(sink, outcome string) {
	if m == nil {
		return
	}
	m.widgetPushes.WithLabelValues(sink, outcome).Inc()
}

// SetWidgetClients reports the number of attached widget stream clients.
func (m *MetricsService) SetWidgetClients(n int) {
	if m == nil {
		return
	}
	m.widgetClients.Set(float64(n))
}

// SetSubjects reports the size of the subject list.
func (m *MetricsService) SetSubjects(n int) {
	if m == nil {
		return
	}
	m.subjectsTotal.Set(float64(n))
}

// SetOpenHomework reports the number of incomplete homework items.
func (m *MetricsService) SetOpenHomework(n int) {
	if m == nil {
		return
	}
	m.homeworkOpen.Set(float64(n))
}

// RecordExport counts an export delivery.
func (m *MetricsService) RecordExport(format, method string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format, method).Inc()
}

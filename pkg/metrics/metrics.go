// Package metrics defines the Prometheus metric collectors used by the
// engine and exposes an HTTP handler for scraping. Every recording method is
// safe to call on a nil *Metrics, which disables collection.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine.
type Metrics struct {
	TasksTotal         *prometheus.CounterVec
	TaskDuration       prometheus.Histogram
	QueuePending       prometheus.Gauge
	DocsIndexedTotal   prometheus.Counter
	IndexMergesTotal   prometheus.Counter
	PagesFetchedTotal  *prometheus.CounterVec
	URLsScheduledTotal prometheus.Counter
	QueriesTotal       *prometheus.CounterVec
	LockWaitsTotal     *prometheus.CounterVec
}

// New creates all collectors and registers them with reg. Passing nil
// registers with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		TasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workqueue_tasks_total",
				Help: "Tasks run by the work queue, by status (ok, panic).",
			},
			[]string{"status"},
		),
		TaskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "workqueue_task_duration_seconds",
				Help:    "Task run time in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		QueuePending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "workqueue_pending_tasks",
				Help: "Tasks submitted but not yet finished.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Documents and pages added to the index.",
			},
		),
		IndexMergesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "index_merges_total",
				Help: "Worker-local indexes merged into the shared index.",
			},
		),
		PagesFetchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_fetched_total",
				Help: "Pages fetched by the crawler, by status (ok, failed).",
			},
			[]string{"status"},
		),
		URLsScheduledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_urls_scheduled_total",
				Help: "Unique URLs scheduled for crawling, including the seed.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Query lines processed, by outcome (executed, duplicate, empty).",
			},
			[]string{"outcome"},
		),
		LockWaitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rwlock_waits_total",
				Help: "Lock acquisitions that had to wait, by mode (read, write).",
			},
			[]string{"mode"},
		),
	}

	reg.MustRegister(
		m.TasksTotal,
		m.TaskDuration,
		m.QueuePending,
		m.DocsIndexedTotal,
		m.IndexMergesTotal,
		m.PagesFetchedTotal,
		m.URLsScheduledTotal,
		m.QueriesTotal,
		m.LockWaitsTotal,
	)

	return m
}

func (m *Metrics) TaskFinished(status string, seconds float64) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(status).Inc()
	m.TaskDuration.Observe(seconds)
}

func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.QueuePending.Set(float64(n))
}

func (m *Metrics) DocIndexed() {
	if m == nil {
		return
	}
	m.DocsIndexedTotal.Inc()
}

func (m *Metrics) IndexMerged() {
	if m == nil {
		return
	}
	m.IndexMergesTotal.Inc()
}

func (m *Metrics) PageFetched(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.PagesFetchedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) URLScheduled() {
	if m == nil {
		return
	}
	m.URLsScheduledTotal.Inc()
}

func (m *Metrics) Query(outcome string) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) LockWaited(mode string) {
	if m == nil {
		return
	}
	m.LockWaitsTotal.WithLabelValues(mode).Inc()
}

// Handler returns the Prometheus scrape HTTP handler for g. A nil g serves
// the default registry.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

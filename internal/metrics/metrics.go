// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apikit_responses_total",
			Help: "Envelopes written, by HTTP status and error code (empty on success).",
		}, []string{"status", "code"})

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apikit_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern, and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})

	PagesServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "apikit_pages_served_total",
			Help: "Cumulative number of paginated result pages built.",
		})

	TasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apikit_tasks_processed_total",
			Help: "Background tasks handled by workers, by task name and result.",
		}, []string{"task", "result"})
)

func init() {
	prometheus.MustRegister(
		ResponsesTotal,
		RequestDuration,
		PagesServed,
		TasksProcessed,
	)
}

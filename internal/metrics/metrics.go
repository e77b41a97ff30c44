// Package metrics exposes Prometheus counters for the HTTP surface and the
// sync pipeline. Handlers are registered on /metrics by the HTTP server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predial_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "predial_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	propertySaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predial_property_saves_total",
		Help: "Count of property save operations by result",
	}, []string{"result"})

	syncOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predial_sync_operations_total",
		Help: "Count of property sync operations by source and result",
	}, []string{"source", "result"})

	pendingSync = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "predial_pending_sync_properties",
		Help: "Number of properties awaiting sync to the remote store",
	})

	reportExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "predial_report_exports_total",
		Help: "Count of yearly report exports by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObservePropertySave increments the save counter with a result label.
func ObservePropertySave(result string) {
	propertySaves.WithLabelValues(result).Inc()
}

// ObserveSync increments the sync counter for the given source ("message" or
// "sweep") and result.
func ObserveSync(source, result string) {
	syncOperations.WithLabelValues(source, result).Inc()
}

// SetPendingSync sets the pending-sync gauge.
func SetPendingSync(count int) {
	if count < 0 {
		count = 0
	}
	pendingSync.Set(float64(count))
}

// ObserveReportExport increments the export counter with a result label.
func ObserveReportExport(result string) {
	reportExports.WithLabelValues(result).Inc()
}

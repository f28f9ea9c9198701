// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AnalysisDuration tracks end-to-end detection backend analysis duration.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Detection backend analysis duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 180, 300},
		},
		[]string{"media_type", "status"},
	)

	// AnalysesTotal tracks analysis submissions.
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total analysis submissions",
		},
		[]string{"media_type", "status"},
	)

	// VerdictsTotal tracks verdicts by media type and display result.
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdicts_total",
			Help: "Total verdicts received",
		},
		[]string{"media_type", "result"},
	)

	// AnalysesInFlight tracks analyses currently running.
	AnalysesInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyses_in_flight",
			Help: "Number of analyses currently in flight",
		},
	)

	// UploadRejectionsTotal tracks uploads rejected before any network call.
	UploadRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_rejections_total",
			Help: "Uploads rejected by client-side validation",
		},
		[]string{"reason"},
	)

	// ChatDeletionsTotal tracks chat deletions.
	ChatDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_deletions_total",
			Help: "Total chat deletions",
		},
		[]string{"scope", "status"},
	)

	// HistoryRefreshesTotal tracks history refetches.
	HistoryRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_refreshes_total",
			Help: "Total history refetches from the detection backend",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAnalysis records metrics for one analysis submission.
func RecordAnalysis(mediaType, status string, duration float64) {
	AnalysisDuration.WithLabelValues(mediaType, status).Observe(duration)
	AnalysesTotal.WithLabelValues(mediaType, status).Inc()
}

// RecordVerdict records a received verdict.
func RecordVerdict(mediaType, result string) {
	VerdictsTotal.WithLabelValues(mediaType, result).Inc()
}

// RecordUploadRejection records a validation rejection.
func RecordUploadRejection(reason string) {
	UploadRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordChatDeletion records a chat deletion attempt.
func RecordChatDeletion(scope, status string) {
	ChatDeletionsTotal.WithLabelValues(scope, status).Inc()
}

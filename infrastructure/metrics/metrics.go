package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests served
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invite",
			Subsystem: "media",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration observes HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "invite",
			Subsystem: "media",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"method", "endpoint"},
	)

	// UploadsTotal counts uploads by media kind and outcome
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invite",
			Subsystem: "media",
			Name:      "uploads_total",
			Help:      "Total file uploads",
		},
		[]string{"kind", "status"},
	)

	// UploadBytesTotal counts bytes written to storage
	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invite",
			Subsystem: "media",
			Name:      "upload_bytes_total",
			Help:      "Total bytes uploaded",
		},
		[]string{"kind"},
	)

	// TokenExchangesTotal counts access-token mints by outcome
	TokenExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "invite",
			Subsystem: "media",
			Name:      "token_exchanges_total",
			Help:      "Total service-account token exchanges",
		},
		[]string{"outcome"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a file upload
func RecordUpload(kind, status string, bytes int64) {
	UploadsTotal.WithLabelValues(kind, status).Inc()
	if status == "success" {
		UploadBytesTotal.WithLabelValues(kind).Add(float64(bytes))
	}
}

// RecordTokenExchange records the outcome of a token mint
func RecordTokenExchange(outcome string) {
	TokenExchangesTotal.WithLabelValues(outcome).Inc()
}

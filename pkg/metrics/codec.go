package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CodecMetrics collects metrics about document encoding, decoding and
// validation. A nil value is a valid no-op collector, so callers never need
// to branch on whether metrics are enabled.
type CodecMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	documentBytes     prometheus.Histogram
	errorsTotal       *prometheus.CounterVec
}

// NewCodecMetrics creates a Prometheus-backed codec metrics collector.
//
// Returns nil if metrics are not enabled (InitRegistry not called); the
// nil collector's methods are no-ops.
func NewCodecMetrics() *CodecMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &CodecMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hypermedia_codec_operations_total",
				Help: "Total number of codec operations by operation type and status",
			},
			[]string{"operation", "status"}, // encode/decode/validate, ok/error
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "hypermedia_codec_operation_duration_seconds",
				Help: "Duration of codec operations in seconds",
				Buckets: []float64{
					0.0001, // 100µs
					0.0005, // 500µs
					0.001,  // 1ms
					0.005,  // 5ms
					0.01,   // 10ms
					0.05,   // 50ms
					0.1,    // 100ms
					0.5,    // 500ms
					1.0,    // 1s
				},
			},
			[]string{"operation"},
		),
		documentBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hypermedia_codec_document_bytes",
				Help:    "Size distribution of processed documents in bytes",
				Buckets: prometheus.ExponentialBuckets(256, 4, 10),
			},
		),
		errorsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hypermedia_codec_errors_total",
				Help: "Total number of codec errors by operation and error code",
			},
			[]string{"operation", "code"},
		),
	}
}

// ObserveOperation records one codec operation with its outcome and
// duration, and the document size it touched.
func (m *CodecMetrics) ObserveOperation(operation string, size int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.documentBytes.Observe(float64(size))
}

// ObserveError records a codec error under its error code label.
func (m *CodecMetrics) ObserveError(operation, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(operation, code).Inc()
}

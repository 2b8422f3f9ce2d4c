package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics collects metrics about document store operations across
// backends. A nil value is a valid no-op collector.
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	documentsStored   *prometheus.GaugeVec
}

// NewStoreMetrics creates a Prometheus-backed store metrics collector.
//
// Returns nil if metrics are not enabled (InitRegistry not called); the
// nil collector's methods are no-ops.
func NewStoreMetrics() *StoreMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &StoreMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "hypermedia_store_operations_total",
				Help: "Total number of document store operations by backend, operation and status",
			},
			[]string{"backend", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "hypermedia_store_operation_duration_seconds",
				Help: "Duration of document store operations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1.0,   // 1s
					5.0,   // 5s
				},
			},
			[]string{"backend", "operation"},
		),
		documentsStored: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hypermedia_store_documents",
				Help: "Number of documents currently stored per backend",
			},
			[]string{"backend"},
		),
	}
}

// ObserveOperation records one store operation with its outcome and
// duration.
func (m *StoreMetrics) ObserveOperation(backend, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(backend, operation, status).Inc()
	m.operationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// SetDocumentCount updates the stored-document gauge for a backend.
func (m *StoreMetrics) SetDocumentCount(backend string, count int) {
	if m == nil {
		return
	}
	m.documentsStored.WithLabelValues(backend).Set(float64(count))
}

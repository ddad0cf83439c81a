package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderEngineMetrics records outcomes of the order consistency engine.
type OrderEngineMetrics struct {
	duration          *prometheus.HistogramVec
	created           *prometheus.CounterVec
	canceled          prometheus.Counter
	insufficientStock *prometheus.CounterVec
	restoreFailures   prometheus.Counter
}

// NewOrderEngineMetrics registers the engine metrics on the provided registerer.
func NewOrderEngineMetrics(reg prometheus.Registerer) *OrderEngineMetrics {
	if reg == nil {
		return &OrderEngineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_create_duration_seconds",
		Help:    "Duration of order validation and creation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created",
		Help: "Orders created successfully.",
	}, []string{"source"})
	canceled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_canceled",
		Help: "Orders moved to the cancelled status.",
	})
	insufficient := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_insufficient_stock",
		Help: "Order requests rejected for insufficient component stock.",
	}, []string{"source"})
	restoreFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_restore_failures",
		Help: "Per-line stock restoration failures during cancellation.",
	})
	reg.MustRegister(duration, created, canceled, insufficient, restoreFailures)
	return &OrderEngineMetrics{
		duration:          duration,
		created:           created,
		canceled:          canceled,
		insufficientStock: insufficient,
		restoreFailures:   restoreFailures,
	}
}

// ObserveCreateDuration records how long an order creation attempt took.
func (m *OrderEngineMetrics) ObserveCreateDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncCreated increments the created counter for the given source.
func (m *OrderEngineMetrics) IncCreated(source string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncCanceled increments the cancellation counter.
func (m *OrderEngineMetrics) IncCanceled() {
	if m == nil || m.canceled == nil {
		return
	}
	m.canceled.Inc()
}

// IncInsufficientStock increments the rejection counter for the given source.
func (m *OrderEngineMetrics) IncInsufficientStock(source string) {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncRestoreFailure counts a failed per-line stock restoration.
func (m *OrderEngineMetrics) IncRestoreFailure() {
	if m == nil || m.restoreFailures == nil {
		return
	}
	m.restoreFailures.Inc()
}

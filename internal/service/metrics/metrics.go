package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks directory operation outcomes and broadcast deliveries.
type Metrics struct {
	Operations         *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	BroadcastDelivered prometheus.Counter
	BroadcastFailed    prometheus.Counter
}

// New registers all metrics on reg. A nil reg uses a fresh private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "groupbot_directory_operations_total",
			Help: "Directory operations by name and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "groupbot_directory_operation_duration_seconds",
			Help:    "Duration of directory operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		BroadcastDelivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "groupbot_broadcast_delivered_total",
			Help: "Announcement deliveries that succeeded",
		}),
		BroadcastFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "groupbot_broadcast_failed_total",
			Help: "Announcement deliveries that failed",
		}),
	}
}

// ObserveOperation records one completed operation. Call with time.Now() at the
// start of the operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveBroadcast(delivered, failed int) {
	if m == nil {
		return
	}
	m.BroadcastDelivered.Add(float64(delivered))
	m.BroadcastFailed.Add(float64(failed))
}

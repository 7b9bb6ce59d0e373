package handler

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var metrics = struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	inputWarnings     prometheus.Counter
}{
	operations: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "polyterm",
			Name:      "operations_total",
			Help:      "Count of polynomial operations served since startup",
		},
		[]string{"op"},
	),
	operationDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "polyterm",
			Name:      "operation_duration_seconds",
			Help:      "Time spent performing polynomial operations",
		},
		[]string{"op"},
	),
	inputWarnings: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "polyterm",
			Name:      "noncanonical_input_total",
			Help:      "Count of stored polynomials that were not in canonical form",
		},
	),
}

var metricsRegister sync.Once

func registerMetrics() {
	metricsRegister.Do(func() {
		prometheus.MustRegister(metrics.operations)
		prometheus.MustRegister(metrics.operationDuration)
		prometheus.MustRegister(metrics.inputWarnings)
	})
}

func recordOperation(op string, duration time.Duration) {
	metrics.operations.WithLabelValues(op).Inc()
	metrics.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func recordInputWarning() {
	metrics.inputWarnings.Inc()
}

package server

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"polyterm/storage"
)

var serverMetrics = struct {
	polysAdded          prometheus.Counter
	polysReplaced       prometheus.Counter
	polysDeleted        prometheus.Counter
	httpRequestDuration *prometheus.HistogramVec
}{
	polysAdded: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "polyterm",
			Name:      "polys_added",
			Help:      "New polynomials stored since startup",
		},
	),
	polysReplaced: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "polyterm",
			Name:      "polys_replaced",
			Help:      "Stored polynomials replaced since startup",
		},
	),
	polysDeleted: prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "polyterm",
			Name:      "polys_deleted",
			Help:      "Stored polynomials deleted since startup",
		},
	),
	httpRequestDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "polyterm",
			Name:      "http_request_duration_seconds",
			Help:      "Time spent generating HTTP responses",
		},
		[]string{
			"method",
			"status_code",
		},
	),
}

var metricsRegister sync.Once

func registerMetrics() {
	metricsRegister.Do(func() {
		prometheus.MustRegister(serverMetrics.polysAdded)
		prometheus.MustRegister(serverMetrics.polysReplaced)
		prometheus.MustRegister(serverMetrics.polysDeleted)
		prometheus.MustRegister(serverMetrics.httpRequestDuration)
	})
}

func metricsStorageNotifier(pc storage.PolyChange) error {
	switch pc.(type) {
	case storage.PolyAdded:
		serverMetrics.polysAdded.Inc()
	case storage.PolyReplaced:
		serverMetrics.polysReplaced.Inc()
	case storage.PolyDeleted:
		serverMetrics.polysDeleted.Inc()
	}
	return nil
}

func recordHTTPRequestDuration(method string, statusCode int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "status_code": strconv.Itoa(statusCode)}
	serverMetrics.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

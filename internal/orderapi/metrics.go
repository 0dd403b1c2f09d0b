package orderapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenbot",
		Subsystem: "order_api",
		Name:      "calls_total",
		Help:      "Order API calls by operation and outcome status.",
	}, []string{"operation", "status"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zenbot",
		Subsystem: "order_api",
		Name:      "call_duration_seconds",
		Help:      "Order API call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func observeCall(operation, status string, elapsed time.Duration) {
	callsTotal.WithLabelValues(operation, status).Inc()
	callDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

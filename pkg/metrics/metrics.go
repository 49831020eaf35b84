package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birthday_check_runs_total",
			Help: "Total number of birthday check runs",
		},
		[]string{"trigger", "outcome"}, // trigger: scheduled, manual; outcome: ok, error, skipped_lock
	)

	CheckRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "birthday_check_run_duration_seconds",
			Help:    "Duration of a full birthday check run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
	)

	WishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birthday_wishes_total",
			Help: "Total number of wish dispatch outcomes",
		},
		[]string{"status"}, // status: sent, failed, skipped_already_sent
	)

	DeliveryLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wish_delivery_latency_ms",
			Help:    "Delivery channel latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"channel", "status"},
	)
)

// RecordRun records the outcome of one check run.
func RecordRun(trigger, outcome string, duration time.Duration) {
	CheckRunsTotal.WithLabelValues(trigger, outcome).Inc()
	CheckRunDuration.Observe(duration.Seconds())
}

// RecordWish increments a dispatch outcome.
func RecordWish(status string) {
	WishesTotal.WithLabelValues(status).Inc()
}

// RecordDeliveryLatency records how long a delivery attempt took.
func RecordDeliveryLatency(channel, status string, duration time.Duration) {
	DeliveryLatency.WithLabelValues(channel, status).Observe(float64(duration.Milliseconds()))
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values for DispatchAttempts.
const (
	OutcomeRejected  = "rejected"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
	OutcomeNoChannel = "no_channel"
)

var (
	durationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

	// DispatchAttempts counts every Send call by channel and terminal state.
	DispatchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_attempts_total",
			Help: "Total number of channel send calls, by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)

	// DispatchDuration measures transmission attempts (validation rejections are not observed).
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_duration_seconds",
			Help:    "Histogram of channel transmission duration in seconds, by channel and success status.",
			Buckets: durationBuckets,
		},
		[]string{"channel", "success"},
	)

	// AbandonedTransmissions is the number of timed-out transmissions whose
	// transmitter has not returned yet.
	AbandonedTransmissions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_dispatch_abandoned_transmissions",
			Help: "Number of timed-out transmissions still running, by channel.",
		},
		[]string{"channel"},
	)

	FanOutTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_fanout_total",
			Help: "Total number of multi-channel dispatches, by whether every channel succeeded.",
		},
		[]string{"all_succeeded"},
	)

	KafkaPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_kafka_publish_total",
			Help: "Total number of Kafka publish attempts, labeled by result.",
		},
		[]string{"result"},
	)

	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_kafka_publish_duration_seconds",
			Help:    "Histogram of Kafka publish durations.",
			Buckets: prometheus.DefBuckets,
		},
	)

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatch_http_requests_total",
			Help: "Total number of HTTP requests processed, labeled by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_dispatch_http_request_duration_seconds",
			Help:    "Histogram of latencies for HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// MetricsHandler returns the HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveDuration records a transmission attempt that started at start.
func ObserveDuration(channel string, success bool, start time.Time) {
	DispatchDuration.WithLabelValues(channel, successLabel(success)).Observe(time.Since(start).Seconds())
}

// RecordFanOut counts one multi-channel dispatch.
func RecordFanOut(results []bool) {
	all := len(results) > 0
	for _, ok := range results {
		all = all && ok
	}
	FanOutTotal.WithLabelValues(successLabel(all)).Inc()
}

func successLabel(success bool) string {
	if success {
		return "true"
	}
	return "false"
}

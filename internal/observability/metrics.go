package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	submissionOutcomes   *prometheus.CounterVec
	paymentVerifications *prometheus.CounterVec
	recomputeDuration    *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		submissionOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_outcomes_total",
			Help: "Submission attempts by outcome (accepted, duplicate, similarity_flagged).",
		}, []string{"outcome"})

		paymentVerifications = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Late-fee payments settled by terminal status.",
		}, []string{"status"})

		recomputeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leaderboard_recompute_seconds",
			Help:    "Duration of leaderboard recomputations per scope and window.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"scope", "window"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, submissionOutcomes, paymentVerifications, recomputeDuration)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// SubmissionOutcomes exposes the counter for submission attempt outcomes.
func SubmissionOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionOutcomes
}

// PaymentVerifications exposes the counter for settled payments.
func PaymentVerifications() *prometheus.CounterVec {
	RegisterMetrics()
	return paymentVerifications
}

// LeaderboardRecomputeDuration exposes the recompute duration histogram.
func LeaderboardRecomputeDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return recomputeDuration
}

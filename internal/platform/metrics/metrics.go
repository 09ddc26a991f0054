package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_planner",
		Subsystem: "planner",
		Name:      "submissions_total",
		Help:      "Route submissions by outcome",
	}, []string{"outcome"})

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trip_planner",
		Subsystem: "planner",
		Name:      "submission_duration_seconds",
		Help:      "Wall time from submit to result or error",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	ResultCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_planner",
		Subsystem: "cache",
		Name:      "result_requests_total",
		Help:      "Result cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_planner",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trip_planner",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10, 60},
	}, []string{"method", "path"})
)

// Outcome labels for SubmissionsTotal.
const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient_locations"
	OutcomeInFlight     = "in_flight"
	OutcomeServerError  = "server_error"
	OutcomeTransport    = "transport_error"
	OutcomeMalformed    = "malformed_result"
	OutcomeTimeout      = "timed_out"
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// HTTPRequestsTotal counts outbound API calls by method and status code ("error" for transport failures).
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogctl_http_requests_total",
			Help: "Total number of blog API requests (by method and status).",
		},
		[]string{"method", "status"},
	)

	// HTTPRequestDuration measures outbound API call latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blogctl_http_request_duration_seconds",
			Help:    "Duration of blog API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms → ~10s
		},
		[]string{"method"},
	)

	// DispatchOutcomes counts finished dispatches by outcome (success|failure).
	DispatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogctl_dispatch_outcomes_total",
			Help: "Finished dispatches by outcome.",
		},
		[]string{"outcome"},
	)

	// TokenRefreshes counts access token refresh attempts by result (ok|failed|skipped).
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogctl_token_refreshes_total",
			Help: "Access token refresh attempts by result.",
		},
		[]string{"result"},
	)
)

// IncHTTPRequest increments the request counter. status 0 is recorded as "error".
func IncHTTPRequest(method string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	HTTPRequestsTotal.WithLabelValues(method, label).Inc()
}

// ObserveDuration records elapsed time since start into a HistogramVec or SummaryVec.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()
	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	}
}

// IncDispatch increments the dispatch outcome counter.
func IncDispatch(outcome string) {
	DispatchOutcomes.WithLabelValues(outcome).Inc()
}

// IncRefresh increments the refresh counter.
func IncRefresh(result string) {
	TokenRefreshes.WithLabelValues(result).Inc()
}

// Push sends everything in the default registry to a Prometheus Pushgateway.
// A CLI run is too short-lived to be scraped.
func Push(ctx context.Context, gatewayURL, job string) error {
	err := push.New(gatewayURL, job).
		Gatherer(prometheus.DefaultGatherer).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentease_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentease_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	leaseOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentease_lease_operations_total",
		Help: "Count of lease operations by kind and result",
	}, []string{"operation", "result"})

	paymentsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentease_payments_generated_total",
		Help: "Count of payment rows created by the recurring generator",
	}, []string{"frequency"})

	overduePayments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rentease_overdue_payments",
		Help: "Number of unpaid payments past their due date",
	})

	activeLeases = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rentease_active_leases",
		Help: "Number of currently active leases",
	})

	statsCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentease_stats_cache_requests_total",
		Help: "Payment statistics cache lookups by outcome",
	}, []string{"outcome"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLeaseOperation increments the lease operation counter
func ObserveLeaseOperation(operation, result string) {
	leaseOperations.WithLabelValues(operation, result).Inc()
}

// ObservePaymentsGenerated counts rows created by the recurring generator
func ObservePaymentsGenerated(frequency string, count int) {
	paymentsGenerated.WithLabelValues(frequency).Add(float64(count))
}

// SetOverduePayments sets the overdue payment gauge
func SetOverduePayments(count int) {
	if count < 0 {
		count = 0
	}
	overduePayments.Set(float64(count))
}

// SetActiveLeases sets the active lease gauge
func SetActiveLeases(count int) {
	if count < 0 {
		count = 0
	}
	activeLeases.Set(float64(count))
}

// ObserveStatsCache records a cache lookup outcome (hit, miss, error)
func ObserveStatsCache(outcome string) {
	statsCacheRequests.WithLabelValues(outcome).Inc()
}

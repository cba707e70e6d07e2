package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cab_booking"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_operations_total",
			Help:      "GraphQL resolver calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings created.",
		},
	)

	bookingStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_changes_total",
			Help:      "Booking status changes by target status.",
		},
		[]string{"status"},
	)

	cabClaimConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cab_claim_conflicts_total",
			Help:      "Booking attempts rejected because the cab was missing or already claimed.",
		},
	)

	authFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_token_failures_total",
			Help:      "Bearer tokens that did not resolve to a user, by reason.",
		},
		[]string{"reason"},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cab_cache_requests_total",
			Help:      "Cab list cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			operations,
			bookingsCreated,
			bookingStatusChanges,
			cabClaimConflicts,
			authFailures,
			cacheRequests,
		)
	})
}

// ObserveHTTP records one served request
func ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// IncOperation counts a resolver call; outcome is "ok" or an error class.
func IncOperation(operation, outcome string) {
	operations.WithLabelValues(operation, outcome).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingStatus(status string) {
	bookingStatusChanges.WithLabelValues(status).Inc()
}

func IncCabClaimConflict() {
	cabClaimConflicts.Inc()
}

func IncAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}

func IncCache(result string) {
	cacheRequests.WithLabelValues(result).Inc()
}

// Package metrics owns the Prometheus collectors for the HTTP layer and the
// bursary workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "bobasi"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	applicationsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "submitted_total",
			Help:      "Applications accepted from students.",
		},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "status_changes_total",
			Help:      "Application status changes by target status.",
		},
		[]string{"status"},
	)

	reviewsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reviews",
			Name:      "recorded_total",
			Help:      "Committee reviews recorded by decision.",
		},
		[]string{"decision"},
	)

	disbursements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "disbursements",
			Name:      "recorded_total",
			Help:      "Disbursements recorded by payment method.",
		},
		[]string{"method"},
	)

	disbursedAmount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "disbursements",
			Name:      "amount_kes_total",
			Help:      "Sum of disbursed funds in Kenya shillings.",
		},
	)

	identifierRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identifiers",
			Name:      "collision_retries_total",
			Help:      "Retries caused by application number or disbursement reference collisions.",
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		applicationsSubmitted,
		statusChanges,
		reviewsRecorded,
		disbursements,
		disbursedAmount,
		identifierRetries,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// TrackInFlight increments the in-flight gauge and returns its release func
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// ObserveHTTP records one finished request. route is the matched route
// template, never the raw path.
func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ApplicationSubmitted counts an accepted application
func ApplicationSubmitted() {
	applicationsSubmitted.Inc()
}

// StatusChanged counts a status change into status
func StatusChanged(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

// ReviewRecorded counts a committee review
func ReviewRecorded(decision string) {
	reviewsRecorded.WithLabelValues(decision).Inc()
}

// DisbursementRecorded counts a disbursement and its amount
func DisbursementRecorded(method string, amount decimal.Decimal) {
	disbursements.WithLabelValues(method).Inc()
	disbursedAmount.Add(amount.InexactFloat64())
}

// IdentifierRetried counts a collision retry for kind
// ("application_number" or "disbursement_reference").
func IdentifierRetried(kind string) {
	identifierRetries.WithLabelValues(kind).Inc()
}

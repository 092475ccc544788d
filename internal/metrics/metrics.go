package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctors_portal_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doctors_portal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsAdmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doctors_portal_bookings_admitted_total",
			Help: "Bookings that passed the admission check and were stored.",
		},
	)

	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctors_portal_bookings_rejected_total",
			Help: "Bookings rejected at admission, by reason.",
		},
		[]string{"reason"},
	)

	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctors_portal_catalog_cache_lookups_total",
			Help: "Service catalog cache lookups by result.",
		},
		[]string{"result"},
	)

	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "doctors_portal_realtime_subscribers",
			Help: "Open availability websocket connections.",
		},
	)
)

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(method, path, status string) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

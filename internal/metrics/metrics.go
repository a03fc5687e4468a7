// Package metrics holds the Prometheus collectors for the booking service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups booking and HTTP collectors.  All Observe methods accept a
// nil receiver so callers can run without metrics.
type Metrics struct {
	BookingsCreated   prometheus.Counter
	BookingsRejected  *prometheus.CounterVec
	BookingsCancelled prometheus.Counter
	CommitDuration    prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New registers the collectors on reg.  Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "pitch_bookings_created_total",
			Help: "Total number of committed bookings",
		}),
		BookingsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pitch_bookings_rejected_total",
			Help: "Total number of rejected booking requests by reason",
		}, []string{"reason"}),
		BookingsCancelled: f.NewCounter(prometheus.CounterOpts{
			Name: "pitch_bookings_cancelled_total",
			Help: "Total number of cancelled bookings",
		}),
		CommitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pitch_booking_commit_duration_seconds",
			Help:    "Time from request validation to committed booking",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pitch_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pitch_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveCreated(d time.Duration) {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
	m.CommitDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.BookingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.BookingsCancelled.Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	}
	return "2xx"
}

package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCreated(40 * time.Millisecond)
	m.ObserveRejected("conflict")
	m.ObserveRejected("conflict")
	m.ObserveCancelled()
	m.ObserveRequest(http.MethodPost, "/v1/bookings", http.StatusConflict, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsRejected.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCancelled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodPost, "/v1/bookings", "4xx")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.CommitDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCreated(time.Second)
		m.ObserveRejected("validation")
		m.ObserveCancelled()
		m.ObserveRequest(http.MethodGet, "/healthz", http.StatusOK, time.Second)
	})
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(http.StatusCreated))
	assert.Equal(t, "3xx", statusLabel(http.StatusFound))
	assert.Equal(t, "4xx", statusLabel(http.StatusTooManyRequests))
	assert.Equal(t, "5xx", statusLabel(http.StatusServiceUnavailable))
}

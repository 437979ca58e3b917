package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsManager_Counters(t *testing.T) {
	m := NewMetricsManager("village_test")

	m.ListingCreated("car")
	m.ListingCreated("car")
	m.ListingDeleted("accessory", true)
	m.BookingAttempt("success", 3)
	m.BookingAttempt("capacity_exceeded", 2)
	m.UserRegistered()
	m.UserDecision("approved")
	m.NotificationSimulated("whatsapp")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ListingsCreatedTotal.WithLabelValues("car")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ListingsDeletedTotal.WithLabelValues("accessory", "soft")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TicketsBookedTotal), "only successful bookings add tickets")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues("capacity_exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UserRegistrationsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UserDecisionsTotal.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("whatsapp")))
}

func TestMetricsManager_Handler(t *testing.T) {
	m := NewMetricsManager("village_test")
	m.ObserveHTTP(http.MethodGet, "/api/cars/{id}", http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `village_test_http_requests_total{method="GET",route="/api/cars/{id}",status="200"} 1`)
	assert.Contains(t, body, "village_test_http_request_latency_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}

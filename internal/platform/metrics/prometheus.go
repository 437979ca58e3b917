package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors on a private registry.
type MetricsManager struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestLatency     *prometheus.HistogramVec
	ListingsCreatedTotal   *prometheus.CounterVec
	ListingsDeletedTotal   *prometheus.CounterVec
	BookingsTotal          *prometheus.CounterVec
	TicketsBookedTotal     prometheus.Counter
	UserRegistrationsTotal prometheus.Counter
	UserDecisionsTotal     *prometheus.CounterVec
	NotificationsTotal     *prometheus.CounterVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_latency_seconds",
			Help:      "Latency of HTTP requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ListingsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created by kind.",
		}, []string{"kind"}),
		ListingsDeletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_deleted_total",
			Help:      "Total number of listings deleted by kind and mode (hard or soft).",
		}, []string{"kind", "mode"}),
		BookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_bookings_total",
			Help:      "Total number of booking attempts by result.",
		}, []string{"result"}),
		TicketsBookedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_tickets_booked_total",
			Help:      "Total number of tickets booked.",
		}),
		UserRegistrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_registrations_total",
			Help:      "Total number of user registrations.",
		}),
		UserDecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_approval_decisions_total",
			Help:      "Total number of admin decisions on pending users.",
		}, []string{"decision"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_simulated_total",
			Help:      "Total number of simulated notifications by channel.",
		}, []string{"channel"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestLatency,
		m.ListingsCreatedTotal,
		m.ListingsDeletedTotal,
		m.BookingsTotal,
		m.TicketsBookedTotal,
		m.UserRegistrationsTotal,
		m.UserDecisionsTotal,
		m.NotificationsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *MetricsManager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *MetricsManager) ListingCreated(kind string) {
	m.ListingsCreatedTotal.WithLabelValues(kind).Inc()
}

func (m *MetricsManager) ListingDeleted(kind string, soft bool) {
	mode := "hard"
	if soft {
		mode = "soft"
	}
	m.ListingsDeletedTotal.WithLabelValues(kind, mode).Inc()
}

func (m *MetricsManager) BookingAttempt(result string, tickets int) {
	m.BookingsTotal.WithLabelValues(result).Inc()
	if result == "success" {
		m.TicketsBookedTotal.Add(float64(tickets))
	}
}

func (m *MetricsManager) UserRegistered() {
	m.UserRegistrationsTotal.Inc()
}

func (m *MetricsManager) UserDecision(decision string) {
	m.UserDecisionsTotal.WithLabelValues(decision).Inc()
}

func (m *MetricsManager) NotificationSimulated(channel string) {
	m.NotificationsTotal.WithLabelValues(channel).Inc()
}

package service

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService exposes Prometheus collectors for the HTTP surface and the
// scheduling domain counters.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	bookingsCreated   prometheus.Counter
	bookingConflicts  prometheus.Counter
	bookingsCancelled prometheus.Counter
	waitlistOffers    prometheus.Counter
	waitlistExpiries  prometheus.Counter
}

// NewMetricsService builds and registers the application collectors on a
// fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	m := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Appointments successfully booked.",
		}),
		bookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Booking attempts rejected over slot conflicts.",
		}),
		bookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_cancelled_total",
			Help: "Appointments cancelled.",
		}),
		waitlistOffers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waitlist_offers_total",
			Help: "Waitlist offers made.",
		}),
		waitlistExpiries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "waitlist_offers_expired_total",
			Help: "Waitlist offers that lapsed unanswered.",
		}),
	}

	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.bookingsCreated,
		m.bookingConflicts,
		m.bookingsCancelled,
		m.waitlistOffers,
		m.waitlistExpiries,
	)
	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request.
func (m *MetricsService) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// BookingCreated increments the booked-appointment counter.
func (m *MetricsService) BookingCreated() { m.bookingsCreated.Inc() }

// BookingConflict increments the rejected-booking counter.
func (m *MetricsService) BookingConflict() { m.bookingConflicts.Inc() }

// BookingCancelled increments the cancelled-appointment counter.
func (m *MetricsService) BookingCancelled() { m.bookingsCancelled.Inc() }

// WaitlistOfferMade increments the waitlist offer counter.
func (m *MetricsService) WaitlistOfferMade() { m.waitlistOffers.Inc() }

// WaitlistOfferExpired increments the lapsed offer counter.
func (m *MetricsService) WaitlistOfferExpired() { m.waitlistExpiries.Inc() }

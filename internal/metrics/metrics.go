package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	bookingEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "booking_events_total",
			Help:      "Booking lifecycle transitions.",
		},
		[]string{"event"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shareit",
			Name:      "gateway_rate_limited_total",
			Help:      "Requests rejected by the gateway rate limiter.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingEvents, rateLimited)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBookingEvent counts a booking lifecycle event by type.
func IncBookingEvent(event string) {
	bookingEvents.WithLabelValues(event).Inc()
}

// IncRateLimited counts a request the gateway turned away.
func IncRateLimited() {
	rateLimited.Inc()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtx_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsConfirmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtx_bookings_confirmed_total",
			Help: "Total bookings committed",
		},
	)

	SeatConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtx_seat_conflicts_total",
			Help: "Total booking attempts rejected because a seat was taken",
		},
	)

	ReserveSeatsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtx_reserve_seats_seconds",
			Help:    "Duration of atomic seat reservations",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtx_outbox_lag_seconds",
			Help: "Age of the oldest unpublished outbox record",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mtx_rate_limit_exceeded_total",
			Help: "Total requests rejected by the rate limiter",
		},
	)
)

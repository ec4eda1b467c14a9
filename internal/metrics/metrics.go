// Package metrics holds the domain counters incremented by the business
// layer. HTTP-level metrics live in the middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts persisted bookings, manual included
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alumhub_bookings_created_total",
		Help: "Bookings persisted",
	})

	// PaymentsCompleted counts bookings that reached paid
	PaymentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alumhub_payments_completed_total",
		Help: "Bookings transitioned to paid",
	})

	// TicketsGenerated counts individual tickets materialized
	TicketsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alumhub_tickets_generated_total",
		Help: "Tickets materialized from paid bookings",
	})

	// BookingsExpired counts bookings expired by the sweep or the gateway
	BookingsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alumhub_bookings_expired_total",
		Help: "Bookings transitioned to expired",
	})
)

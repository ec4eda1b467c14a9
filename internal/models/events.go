package models

import "time"

// NATS subjects for domain events
const (
	EventBookingCreated   = "booking.created"
	EventBookingExpired   = "booking.expired"
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
	EventTicketsGenerated = "tickets.generated"
	EventUserRegistered   = "user.registered"
)

// BookingCreatedEvent is published when a booking is persisted
type BookingCreatedEvent struct {
	BookingID   int64     `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	EventID     int64     `json:"event_id"`
	UserID      *int64    `json:"user_id"`
	TotalPrice  int64     `json:"total_price"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingExpiredEvent is published when the expiration sweep or the gateway
// moves a booking to expired
type BookingExpiredEvent struct {
	BookingID   int64     `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	EventID     int64     `json:"event_id"`
	UserID      *int64    `json:"user_id"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// PaymentCompletedEvent is published after a booking transitions to paid
type PaymentCompletedEvent struct {
	BookingID     int64     `json:"booking_id"`
	BookingCode   string    `json:"booking_code"`
	EventID       int64     `json:"event_id"`
	UserID        *int64    `json:"user_id"`
	PaymentMethod string    `json:"payment_method"`
	TotalPrice    int64     `json:"total_price"`
	Timestamp     time.Time `json:"timestamp"`
}

// PaymentFailedEvent is published when the gateway reports cancel/deny/expire
type PaymentFailedEvent struct {
	BookingID   int64     `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	EventID     int64     `json:"event_id"`
	UserID      *int64    `json:"user_id"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// TicketsGeneratedEvent is published after a paid booking is expanded into
// individual tickets
type TicketsGeneratedEvent struct {
	BookingID   int64     `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	EventID     int64     `json:"event_id"`
	TicketCount int       `json:"ticket_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// UserRegisteredEvent is published after a new account is created
type UserRegisteredEvent struct {
	UserID         int64     `json:"user_id"`
	GraduationYear int       `json:"graduation_year"`
	RegNoGlobal    int       `json:"reg_no_global"`
	Timestamp      time.Time `json:"timestamp"`
}

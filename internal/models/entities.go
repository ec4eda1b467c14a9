package models

import (
	"encoding/json"
	"time"
)

// Payment statuses for a booking. paid, refunded and expired are terminal.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusExpired  = "expired"
	PaymentStatusRefunded = "refunded"
)

// User represents an alumni account
type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Name           string    `json:"name" db:"name"`
	Phone          string    `json:"phone" db:"phone"`
	Role           string    `json:"role" db:"role"`
	GraduationYear int       `json:"graduation_year" db:"graduation_year"`
	RegNoGlobal    *int      `json:"reg_no_global" db:"reg_no_global"`
	RegNoCohort    *int      `json:"reg_no_cohort" db:"reg_no_cohort"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Event owns the booking/ticket code formats and their running sequences
type Event struct {
	ID                int64     `json:"id" db:"id"`
	Code              string    `json:"code" db:"code"`
	Title             string    `json:"title" db:"title"`
	EventDate         time.Time `json:"event_date" db:"event_date"`
	EventTime         string    `json:"event_time" db:"event_time"`
	Location          string    `json:"location" db:"location"`
	Description       string    `json:"description" db:"description"`
	Status            string    `json:"status" db:"status"`
	BookingCodeFormat string    `json:"booking_code_format" db:"booking_code_format"`
	TicketCodeFormat  string    `json:"ticket_code_format" db:"ticket_code_format"`
	LastBookingSeq    int       `json:"last_booking_seq" db:"last_booking_seq"`
	LastTicketSeq     int       `json:"last_ticket_seq" db:"last_ticket_seq"`
	CreatedBy         *int64    `json:"created_by" db:"created_by"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// TicketType is a priced category of ticket within an event
type TicketType struct {
	ID        int64     `json:"id" db:"id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Quota     int       `json:"quota" db:"quota"`
	Sold      int       `json:"sold" db:"sold"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Booking is one purchase intent for an event, identified by its booking code
type Booking struct {
	ID                int64           `json:"id" db:"id"`
	BookingCode       string          `json:"booking_code" db:"booking_code"`
	EventID           int64           `json:"event_id" db:"event_id"`
	UserID            *int64          `json:"user_id" db:"user_id"`
	Cart              json.RawMessage `json:"cart" db:"cart"`
	Subtotal          int64           `json:"subtotal" db:"subtotal"`
	ServiceFee        int64           `json:"service_fee" db:"service_fee"`
	TotalPrice        int64           `json:"total_price" db:"total_price"`
	PaymentStatus     string          `json:"payment_status" db:"payment_status"`
	PaymentMethod     *string         `json:"payment_method" db:"payment_method"`
	PaymentDate       *time.Time      `json:"payment_date" db:"payment_date"`
	SnapToken         *string         `json:"snap_token" db:"snap_token"`
	SnapRedirectURL   *string         `json:"snap_redirect_url" db:"snap_redirect_url"`
	CoordinatorName   *string         `json:"coordinator_name" db:"coordinator_name"`
	CoordinatorPhone  *string         `json:"coordinator_phone" db:"coordinator_phone"`
	ManualTicketType  *int64          `json:"manual_ticket_type" db:"manual_ticket_type"`
	ManualTicketCount *int            `json:"manual_ticket_count" db:"manual_ticket_count"`
	IsDeleted         bool            `json:"is_deleted" db:"is_deleted"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the booking's payment status can no longer change
func (b *Booking) IsTerminal() bool {
	switch b.PaymentStatus {
	case PaymentStatusPaid, PaymentStatusExpired, PaymentStatusRefunded:
		return true
	}
	return false
}

// Ticket is one individual admission unit belonging to a booking
type Ticket struct {
	ID              int64           `json:"id" db:"id"`
	TicketCode      string          `json:"ticket_code" db:"ticket_code"`
	BookingID       int64           `json:"booking_id" db:"booking_id"`
	TicketTypeID    int64           `json:"ticket_type_id" db:"ticket_type_id"`
	SelectedOptions json.RawMessage `json:"selected_options" db:"selected_options"`
	ShirtPickedUp   bool            `json:"shirt_picked_up" db:"shirt_picked_up"`
	ShirtPickupTime *time.Time      `json:"shirt_pickup_time" db:"shirt_pickup_time"`
	CheckedIn       bool            `json:"checked_in" db:"checked_in"`
	CheckinTime     *time.Time      `json:"checkin_time" db:"checkin_time"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// MidtransLog is an append-only audit record of a raw gateway notification
type MidtransLog struct {
	ID                int64           `json:"id" db:"id"`
	OrderID           string          `json:"order_id" db:"order_id"`
	TransactionID     string          `json:"transaction_id" db:"transaction_id"`
	TransactionStatus string          `json:"transaction_status" db:"transaction_status"`
	FraudStatus       string          `json:"fraud_status" db:"fraud_status"`
	PaymentType       string          `json:"payment_type" db:"payment_type"`
	GrossAmount       string          `json:"gross_amount" db:"gross_amount"`
	StatusCode        string          `json:"status_code" db:"status_code"`
	RawBody           json.RawMessage `json:"raw_body" db:"raw_body"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// Notification is an in-app message for a user, written by the consumers
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

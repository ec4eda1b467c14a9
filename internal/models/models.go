package models

import "encoding/json"

// CartItem is one line of a booking's cart. Carts are stored as canonical
// JSON text, an array of these items.
type CartItem struct {
	TicketTypeID int64           `json:"ticket_type_id"`
	Quantity     int             `json:"quantity"`
	Options      json.RawMessage `json:"options,omitempty"`
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Name           string `json:"name" binding:"required"`
	Phone          string `json:"phone"`
	GraduationYear int    `json:"graduation_year"`
}

// RegisterResponse returns the freshly assigned registration numbers
type RegisterResponse struct {
	ID          int64 `json:"id"`
	RegNoGlobal int   `json:"reg_no_global"`
	RegNoCohort *int  `json:"reg_no_cohort,omitempty"`
}

// CreateEventRequest is the admin payload for creating an event
type CreateEventRequest struct {
	Code              string            `json:"code" binding:"required"`
	Title             string            `json:"title" binding:"required"`
	EventDate         string            `json:"event_date" binding:"required"`
	EventTime         string            `json:"event_time"`
	Location          string            `json:"location"`
	Description       string            `json:"description"`
	Status            string            `json:"status"`
	BookingCodeFormat string            `json:"booking_code_format"`
	TicketCodeFormat  string            `json:"ticket_code_format"`
	TicketTypes       []TicketTypeInput `json:"ticket_types"`
}

// UpdateEventRequest is the admin payload for editing an event. Empty
// fields are left unchanged.
type UpdateEventRequest struct {
	Title       string `json:"title"`
	EventDate   string `json:"event_date"`
	EventTime   string `json:"event_time"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// TicketTypeInput describes one ticket category when creating an event
type TicketTypeInput struct {
	Name  string `json:"name" binding:"required"`
	Price int64  `json:"price"`
	Quota int    `json:"quota"`
}

// CreateBookingRequest is the payload for a cart-based booking
type CreateBookingRequest struct {
	EventID    int64      `json:"event_id" binding:"required"`
	Items      []CartItem `json:"items" binding:"required,min=1"`
	ServiceFee int64      `json:"service_fee" binding:"min=0"`
}

// CreateManualBookingRequest is the admin payload for staff-entered
// cash/transfer bookings
type CreateManualBookingRequest struct {
	EventID          int64  `json:"event_id" binding:"required"`
	CoordinatorName  string `json:"coordinator_name" binding:"required"`
	CoordinatorPhone string `json:"coordinator_phone" binding:"required"`
	TicketTypeID     int64  `json:"ticket_type_id" binding:"required"`
	TicketCount      int    `json:"ticket_count" binding:"required,min=1"`
	PaymentMethod    string `json:"payment_method" binding:"required,oneof=cash transfer"`
}

// CreateBookingResponse returns the allocated booking code and, when the
// gateway call succeeded, a checkout session
type CreateBookingResponse struct {
	ID              int64   `json:"id"`
	BookingCode     string  `json:"booking_code"`
	TotalPrice      int64   `json:"total_price"`
	PaymentStatus   string  `json:"payment_status"`
	SnapToken       *string `json:"snap_token,omitempty"`
	SnapRedirectURL *string `json:"snap_redirect_url,omitempty"`
}

// MidtransNotification is the webhook payload delivered by the gateway.
// order_id carries the booking code.
type MidtransNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	GrossAmount       string `json:"gross_amount"`
	StatusCode        string `json:"status_code"`
}

// ListEventsResponse is the event list/search payload
type ListEventsResponse []Event

package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"alumhub/internal/models"
	"alumhub/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

func (h *Handlers) HandleBookingCreated(m *stan.Msg) {
	var event models.BookingCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking created event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing booking created event", "booking_code", event.BookingCode)

	h.notify(event.UserID, "Booking created",
		fmt.Sprintf("Your booking %s has been created. Complete the payment to receive your tickets.",
			event.BookingCode))

	m.Ack()
}

// HandlePaymentCompleted writes the confirmation notification and re-runs
// ticket materialization. Materialization inside the webhook request can
// fail after the paid state is persisted; the existing-tickets guard makes
// this retry safe to run on every delivery.
func (h *Handlers) HandlePaymentCompleted(m *stan.Msg) {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment completed event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing payment completed event", "booking_code", event.BookingCode)

	ctx := context.Background()
	if err := h.services.Bookings.MaterializeByCode(ctx, event.BookingCode); err != nil {
		slog.Error("Materialization retry failed, leaving message unacked",
			"error", err, "booking_code", event.BookingCode)
		// No Ack: the streaming server redelivers after the AckWait
		return
	}

	h.notify(event.UserID, "Payment received",
		fmt.Sprintf("Payment for booking %s is confirmed. Your tickets are ready.", event.BookingCode))

	m.Ack()
}

func (h *Handlers) HandlePaymentFailed(m *stan.Msg) {
	var event models.PaymentFailedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal payment failed event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing payment failed event",
		"booking_code", event.BookingCode, "reason", event.Reason)

	h.notify(event.UserID, "Payment not completed",
		fmt.Sprintf("Payment for booking %s was not completed (%s).", event.BookingCode, event.Reason))

	m.Ack()
}

func (h *Handlers) HandleBookingExpired(m *stan.Msg) {
	var event models.BookingExpiredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking expired event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing booking expired event", "booking_code", event.BookingCode)

	h.notify(event.UserID, "Booking expired",
		fmt.Sprintf("Booking %s expired before payment. You can create a new booking anytime.",
			event.BookingCode))

	m.Ack()
}

func (h *Handlers) HandleUserRegistered(m *stan.Msg) {
	var event models.UserRegisteredEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal user registered event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Processing user registered event", "user_id", event.UserID)

	userID := event.UserID
	h.notify(&userID, "Welcome",
		fmt.Sprintf("Welcome to the alumni network. Your registration number is %d.", event.RegNoGlobal))

	m.Ack()
}

// notify writes an in-app notification. Events without a user carry no
// audience; notification failures are logged and the event still acks.
func (h *Handlers) notify(userID *int64, title, body string) {
	if userID == nil {
		return
	}

	notification := &models.Notification{UserID: *userID, Title: title, Body: body}
	if err := h.services.Notifications.Create(context.Background(), notification); err != nil {
		slog.Error("Failed to create notification", "error", err, "user_id", *userID)
	}
}

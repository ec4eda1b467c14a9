package integration

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"alumhub/internal/models"
)

// TestSettlementPaymentFlow walks the happy path: an admin publishes an
// event, an alumni books two tickets, the gateway settles, and the booking
// ends up paid with its tickets generated.
func TestSettlementPaymentFlow(t *testing.T) {
	client := RequireAPI(t)
	admin := RequireAdmin(t, client)

	LogTestStep(t, "Creating event")
	event, ticketTypes := CreateTestEvent(t, admin)

	LogTestStep(t, "Registering user and creating booking")
	user, _ := RegisterTestUser(t, client)
	booking := user.CreateBooking(t, models.CreateBookingRequest{
		EventID: event.ID,
		Items:   []models.CartItem{{TicketTypeID: ticketTypes[0].ID, Quantity: 2}},
	})

	if !strings.HasPrefix(booking.BookingCode, event.Code+"-") {
		t.Fatalf("Booking code %s does not carry event code %s", booking.BookingCode, event.Code)
	}
	if booking.PaymentStatus != models.PaymentStatusPending {
		t.Fatalf("New booking has status %s, expected pending", booking.PaymentStatus)
	}
	if booking.TotalPrice != 2*ticketTypes[0].Price {
		t.Fatalf("Booking total is %d, expected %d", booking.TotalPrice, 2*ticketTypes[0].Price)
	}

	LogTestStep(t, "Delivering settlement notification for %s", booking.BookingCode)
	client.SendPaymentWebhook(t, SettlementNotification(booking.BookingCode))

	paid := user.GetBooking(t, booking.ID)
	if paid.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("Booking has status %s after settlement, expected paid", paid.PaymentStatus)
	}
	if paid.PaymentDate == nil {
		t.Fatal("Paid booking has no payment date")
	}

	tickets := user.ListBookingTickets(t, booking.ID)
	if len(tickets) != 2 {
		t.Fatalf("Expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].TicketCode == tickets[1].TicketCode {
		t.Fatalf("Duplicate ticket code %s", tickets[0].TicketCode)
	}
	LogTestResult(t, "Booking %s paid with %d tickets", booking.BookingCode, len(tickets))
}

// TestDuplicateSettlementDelivery redelivers the same settlement
// notification and verifies the second delivery changes nothing: same
// payment date, same ticket set.
func TestDuplicateSettlementDelivery(t *testing.T) {
	client := RequireAPI(t)
	admin := RequireAdmin(t, client)

	event, ticketTypes := CreateTestEvent(t, admin)
	user, _ := RegisterTestUser(t, client)
	booking := user.CreateBooking(t, models.CreateBookingRequest{
		EventID: event.ID,
		Items:   []models.CartItem{{TicketTypeID: ticketTypes[0].ID, Quantity: 2}},
	})

	notification := SettlementNotification(booking.BookingCode)

	LogTestStep(t, "Delivering settlement notification twice for %s", booking.BookingCode)
	client.SendPaymentWebhook(t, notification)
	first := user.GetBooking(t, booking.ID)
	if first.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("Booking has status %s after settlement, expected paid", first.PaymentStatus)
	}
	firstTickets := user.ListBookingTickets(t, booking.ID)

	client.SendPaymentWebhook(t, notification)
	second := user.GetBooking(t, booking.ID)

	if second.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("Booking has status %s after redelivery, expected paid", second.PaymentStatus)
	}
	if first.PaymentDate == nil || second.PaymentDate == nil || !second.PaymentDate.Equal(*first.PaymentDate) {
		t.Fatalf("Redelivery moved the payment date: %v → %v", first.PaymentDate, second.PaymentDate)
	}

	secondTickets := user.ListBookingTickets(t, booking.ID)
	if len(secondTickets) != len(firstTickets) {
		t.Fatalf("Redelivery changed the ticket count: %d → %d", len(firstTickets), len(secondTickets))
	}
	for i := range firstTickets {
		if firstTickets[i].TicketCode != secondTickets[i].TicketCode {
			t.Fatalf("Redelivery changed ticket %d: %s → %s",
				i, firstTickets[i].TicketCode, secondTickets[i].TicketCode)
		}
	}
	LogTestResult(t, "Redelivery left booking %s untouched with %d tickets",
		booking.BookingCode, len(secondTickets))
}

// TestBookingCodesAreUnique fires concurrent bookings against one event and
// verifies every allocated code is distinct.
func TestBookingCodesAreUnique(t *testing.T) {
	client := RequireAPI(t)
	admin := RequireAdmin(t, client)

	event, ticketTypes := CreateTestEvent(t, admin)
	user, _ := RegisterTestUser(t, client)

	const bookings = 10
	LogTestStep(t, "Creating %d bookings concurrently for event %s", bookings, event.Code)

	codes := make(chan string, bookings)
	errs := make(chan error, bookings)

	var wg sync.WaitGroup
	for i := 0; i < bookings; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			booking, err := user.CreateBookingRaw(models.CreateBookingRequest{
				EventID: event.ID,
				Items:   []models.CartItem{{TicketTypeID: ticketTypes[0].ID, Quantity: 1}},
			})
			if err != nil {
				errs <- err
				return
			}
			codes <- booking.BookingCode
		}()
	}
	wg.Wait()
	close(codes)
	close(errs)

	for err := range errs {
		t.Fatalf("Failed to create booking: %v", err)
	}

	seen := make(map[string]bool)
	for code := range codes {
		if seen[code] {
			t.Fatalf("Booking code %s allocated twice", code)
		}
		seen[code] = true
	}
	if len(seen) != bookings {
		t.Fatalf("Expected %d distinct booking codes, got %d", bookings, len(seen))
	}
	LogTestResult(t, "All %d booking codes are distinct", bookings)
}

// TestExpireNotificationMarksBookingExpired delivers an expire notification
// and verifies the booking leaves pending without any tickets.
func TestExpireNotificationMarksBookingExpired(t *testing.T) {
	client := RequireAPI(t)
	admin := RequireAdmin(t, client)

	event, ticketTypes := CreateTestEvent(t, admin)
	user, _ := RegisterTestUser(t, client)
	booking := user.CreateBooking(t, models.CreateBookingRequest{
		EventID: event.ID,
		Items:   []models.CartItem{{TicketTypeID: ticketTypes[0].ID, Quantity: 1}},
	})

	LogTestStep(t, "Delivering expire notification for %s", booking.BookingCode)
	client.SendPaymentWebhook(t, models.MidtransNotification{
		OrderID:           booking.BookingCode,
		TransactionID:     fmt.Sprintf("txn-%s", uniqueSuffix()),
		TransactionStatus: "expire",
		StatusCode:        "407",
	})

	expired := user.GetBooking(t, booking.ID)
	if expired.PaymentStatus != models.PaymentStatusExpired {
		t.Fatalf("Booking has status %s after expire, expected expired", expired.PaymentStatus)
	}

	tickets := user.ListBookingTickets(t, booking.ID)
	if len(tickets) != 0 {
		t.Fatalf("Expired booking has %d tickets, expected none", len(tickets))
	}

	// An expired booking is terminal; a late settlement must not revive it
	client.SendPaymentWebhook(t, SettlementNotification(booking.BookingCode))
	still := user.GetBooking(t, booking.ID)
	if still.PaymentStatus != models.PaymentStatusExpired {
		t.Fatalf("Late settlement revived booking to %s", still.PaymentStatus)
	}
	LogTestResult(t, "Booking %s stayed expired after late settlement", booking.BookingCode)
}

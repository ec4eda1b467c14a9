package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "alumhub/internal/errors"
	"alumhub/internal/models"
	"alumhub/internal/repository"
)

// In-memory stores backing the payment-flow tests.

type fakeBookingStore struct {
	bookings      map[int64]*models.Booking
	nextID        int64
	markPaidCalls int
	// rejectMarkPaid simulates a concurrent delivery winning the paid
	// transition between the status check and the update
	rejectMarkPaid bool
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[int64]*models.Booking), nextID: 1}
}

func (f *fakeBookingStore) Create(_ context.Context, booking *models.Booking) error {
	booking.ID = f.nextID
	f.nextID++
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id int64) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok || b.IsDeleted {
		return nil, nil
	}
	return b, nil
}

func (f *fakeBookingStore) GetByCode(_ context.Context, code string) (*models.Booking, error) {
	for _, b := range f.bookings {
		if b.BookingCode == code {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingStore) GetByUserID(_ context.Context, userID int64) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.UserID != nil && *b.UserID == userID && !b.IsDeleted {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) SetPaymentSession(_ context.Context, id int64, token, redirectURL string) error {
	b := f.bookings[id]
	b.SnapToken = &token
	b.SnapRedirectURL = &redirectURL
	return nil
}

func (f *fakeBookingStore) MarkPaid(_ context.Context, id int64, method string, paidAt time.Time) (bool, error) {
	f.markPaidCalls++
	if f.rejectMarkPaid {
		return false, nil
	}
	b, ok := f.bookings[id]
	if !ok || b.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	b.PaymentStatus = models.PaymentStatusPaid
	b.PaymentMethod = &method
	b.PaymentDate = &paidAt
	return true, nil
}

func (f *fakeBookingStore) MarkExpired(_ context.Context, id int64) error {
	f.bookings[id].PaymentStatus = models.PaymentStatusExpired
	return nil
}

func (f *fakeBookingStore) SoftDelete(_ context.Context, id int64) error {
	f.bookings[id].IsDeleted = true
	return nil
}

func (f *fakeBookingStore) GetExpired(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.PaymentStatus == models.PaymentStatusPending && !b.IsDeleted && b.CreatedAt.Before(cutoff) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeEventStore struct {
	events      map[int64]*models.Event
	ticketTypes map[int64]*models.TicketType
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		events:      make(map[int64]*models.Event),
		ticketTypes: make(map[int64]*models.TicketType),
	}
}

func (f *fakeEventStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	return f.events[id], nil
}

func (f *fakeEventStore) GetTicketType(_ context.Context, id int64) (*models.TicketType, error) {
	return f.ticketTypes[id], nil
}

func (f *fakeEventStore) AllocateBookingSeq(_ context.Context, eventID int64) (int, error) {
	e, ok := f.events[eventID]
	if !ok {
		return 0, fmt.Errorf("event %d not found", eventID)
	}
	e.LastBookingSeq++
	return e.LastBookingSeq, nil
}

type fakeTicketStore struct {
	ticketsByBooking map[int64][]models.Ticket
	materializeCalls int
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{ticketsByBooking: make(map[int64][]models.Ticket)}
}

func (f *fakeTicketStore) CountByBooking(_ context.Context, bookingID int64) (int, error) {
	return len(f.ticketsByBooking[bookingID]), nil
}

func (f *fakeTicketStore) MaterializeBooking(_ context.Context, event *models.Event, bookingID int64, units []repository.TicketUnit, _ map[int64]int) ([]models.Ticket, error) {
	f.materializeCalls++
	var tickets []models.Ticket
	for i, unit := range units {
		tickets = append(tickets, models.Ticket{
			ID:           int64(len(f.ticketsByBooking[bookingID]) + i + 1),
			TicketCode:   event.FormatTicketCode(event.LastTicketSeq + i + 1),
			BookingID:    bookingID,
			TicketTypeID: unit.TicketTypeID,
		})
	}
	event.LastTicketSeq += len(units)
	f.ticketsByBooking[bookingID] = append(f.ticketsByBooking[bookingID], tickets...)
	return tickets, nil
}

func (f *fakeTicketStore) GetByID(_ context.Context, id int64) (*models.Ticket, error) {
	for _, tickets := range f.ticketsByBooking {
		for i := range tickets {
			if tickets[i].ID == id {
				return &tickets[i], nil
			}
		}
	}
	return nil, nil
}

func (f *fakeTicketStore) ListByBooking(_ context.Context, bookingID int64) ([]models.Ticket, error) {
	return f.ticketsByBooking[bookingID], nil
}

func (f *fakeTicketStore) CheckIn(_ context.Context, _ int64, _ time.Time) (bool, error) {
	return false, nil
}

func (f *fakeTicketStore) MarkShirtPickedUp(_ context.Context, _ int64, _ time.Time) (bool, error) {
	return false, nil
}

type fakeUserGetter struct{}

func (fakeUserGetter) GetByID(_ context.Context, _ int64) (*models.User, error) {
	return nil, nil
}

type fakeAuditStore struct {
	logs []*models.MidtransLog
}

func (f *fakeAuditStore) CreateMidtransLog(_ context.Context, log *models.MidtransLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type flowFixture struct {
	bookings *fakeBookingStore
	events   *fakeEventStore
	tickets  *fakeTicketStore
	audit    *fakeAuditStore
	service  *BookingService
	ticketSv *TicketService
}

// newFlowFixture wires the booking and ticket services over in-memory
// stores: one active event with a single priced ticket type.
func newFlowFixture() *flowFixture {
	bookings := newFakeBookingStore()
	events := newFakeEventStore()
	tickets := newFakeTicketStore()
	audit := &fakeAuditStore{}

	events.events[1] = &models.Event{ID: 1, Code: "REUNI26", Status: "active"}
	events.ticketTypes[10] = &models.TicketType{ID: 10, EventID: 1, Name: "Regular", Price: 75000, Quota: 100}

	ticketSv := NewTicketService(tickets, events, nil)
	bookingSv := NewBookingService(bookings, events, fakeUserGetter{}, audit, ticketSv, nil, nil)

	return &flowFixture{
		bookings: bookings,
		events:   events,
		tickets:  tickets,
		audit:    audit,
		service:  bookingSv,
		ticketSv: ticketSv,
	}
}

func (fx *flowFixture) createBooking(t *testing.T, quantity int) *models.CreateBookingResponse {
	t.Helper()
	resp, err := fx.service.Create(context.Background(), 1, &models.CreateBookingRequest{
		EventID: 1,
		Items:   []models.CartItem{{TicketTypeID: 10, Quantity: quantity}},
	})
	require.NoError(t, err)
	return resp
}

func settlementNotification(orderID string) *models.MidtransNotification {
	return &models.MidtransNotification{
		OrderID:           orderID,
		TransactionStatus: "settlement",
		PaymentType:       "gopay",
	}
}

func TestSettlementTransitionMaterializesTickets(t *testing.T) {
	fx := newFlowFixture()
	resp := fx.createBooking(t, 2)

	err := fx.service.HandlePaymentNotification(context.Background(),
		settlementNotification(resp.BookingCode), []byte(`{}`))
	require.NoError(t, err)

	booking := fx.bookings.bookings[resp.ID]
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
	require.NotNil(t, booking.PaymentMethod)
	assert.Equal(t, "gopay", *booking.PaymentMethod)
	assert.NotNil(t, booking.PaymentDate)

	assert.Equal(t, 1, fx.tickets.materializeCalls)
	assert.Len(t, fx.tickets.ticketsByBooking[resp.ID], 2)
	assert.Len(t, fx.audit.logs, 1)
}

func TestDuplicateSettlementDeliveryIsNoOp(t *testing.T) {
	fx := newFlowFixture()
	resp := fx.createBooking(t, 2)

	ctx := context.Background()
	require.NoError(t, fx.service.HandlePaymentNotification(ctx,
		settlementNotification(resp.BookingCode), []byte(`{}`)))

	firstPaidAt := *fx.bookings.bookings[resp.ID].PaymentDate

	// The gateway redelivers; the booking is terminal and nothing moves
	require.NoError(t, fx.service.HandlePaymentNotification(ctx,
		settlementNotification(resp.BookingCode), []byte(`{}`)))

	booking := fx.bookings.bookings[resp.ID]
	assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
	assert.Equal(t, firstPaidAt, *booking.PaymentDate)
	assert.Equal(t, 1, fx.bookings.markPaidCalls)
	assert.Equal(t, 1, fx.tickets.materializeCalls)
	assert.Len(t, fx.tickets.ticketsByBooking[resp.ID], 2)

	// Both deliveries are audited
	assert.Len(t, fx.audit.logs, 2)
}

func TestConcurrentSettlementLosesPaidRace(t *testing.T) {
	fx := newFlowFixture()
	resp := fx.createBooking(t, 1)

	// The booking read is stale pending but the conditional update finds it
	// already transitioned
	fx.bookings.rejectMarkPaid = true

	err := fx.service.HandlePaymentNotification(context.Background(),
		settlementNotification(resp.BookingCode), []byte(`{}`))
	require.NoError(t, err)

	// The losing delivery runs none of the paid side effects
	assert.Equal(t, 0, fx.tickets.materializeCalls)
	assert.Empty(t, fx.tickets.ticketsByBooking[resp.ID])
}

func TestMaterializeSkipsBookingWithTickets(t *testing.T) {
	fx := newFlowFixture()
	resp := fx.createBooking(t, 2)

	fx.tickets.ticketsByBooking[resp.ID] = []models.Ticket{
		{ID: 1, BookingID: resp.ID}, {ID: 2, BookingID: resp.ID},
	}

	booking := fx.bookings.bookings[resp.ID]
	booking.PaymentStatus = models.PaymentStatusPaid

	require.NoError(t, fx.ticketSv.Materialize(context.Background(), booking))

	assert.Equal(t, 0, fx.tickets.materializeCalls)
	assert.Len(t, fx.tickets.ticketsByBooking[resp.ID], 2)
}

func TestMaterializeTwiceCreatesTicketsOnce(t *testing.T) {
	fx := newFlowFixture()
	resp := fx.createBooking(t, 3)

	booking := fx.bookings.bookings[resp.ID]
	booking.PaymentStatus = models.PaymentStatusPaid

	ctx := context.Background()
	require.NoError(t, fx.ticketSv.Materialize(ctx, booking))
	require.NoError(t, fx.ticketSv.Materialize(ctx, booking))

	assert.Equal(t, 1, fx.tickets.materializeCalls)
	assert.Len(t, fx.tickets.ticketsByBooking[resp.ID], 3)
}

func TestExpireNotificationPublishesFailure(t *testing.T) {
	fx := newFlowFixture()
	resp := fx.createBooking(t, 1)

	notification := &models.MidtransNotification{
		OrderID:           resp.BookingCode,
		TransactionStatus: "expire",
	}
	require.NoError(t, fx.service.HandlePaymentNotification(context.Background(),
		notification, []byte(`{}`)))

	booking := fx.bookings.bookings[resp.ID]
	assert.Equal(t, models.PaymentStatusExpired, booking.PaymentStatus)
	assert.Equal(t, 0, fx.tickets.materializeCalls)
}

func TestNotificationForUnknownOrder(t *testing.T) {
	fx := newFlowFixture()

	err := fx.service.HandlePaymentNotification(context.Background(),
		settlementNotification("REUNI26-2026-9999"), []byte(`{}`))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Unknown orders are still audited
	assert.Len(t, fx.audit.logs, 1)
}

func TestCreateBookingAllocatesSequentialCodes(t *testing.T) {
	fx := newFlowFixture()

	first := fx.createBooking(t, 1)
	second := fx.createBooking(t, 1)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("REUNI26-%d-0001", year), first.BookingCode)
	assert.Equal(t, fmt.Sprintf("REUNI26-%d-0002", year), second.BookingCode)
}

func TestCreateBookingRejectsNegativeServiceFee(t *testing.T) {
	fx := newFlowFixture()

	_, err := fx.service.Create(context.Background(), 1, &models.CreateBookingRequest{
		EventID:    1,
		Items:      []models.CartItem{{TicketTypeID: 10, Quantity: 1}},
		ServiceFee: -5000,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, fx.bookings.bookings)
}

func TestManualPaidTransitionMaterializes(t *testing.T) {
	fx := newFlowFixture()

	typeID := int64(10)
	count := 4
	method := "cash"
	booking := &models.Booking{
		EventID:           1,
		BookingCode:       "REUNI26-2026-0042",
		PaymentStatus:     models.PaymentStatusPending,
		PaymentMethod:     &method,
		ManualTicketType:  &typeID,
		ManualTicketCount: &count,
	}
	require.NoError(t, fx.bookings.Create(context.Background(), booking))

	updated, err := fx.service.MarkManualPaid(context.Background(), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Len(t, fx.tickets.ticketsByBooking[booking.ID], 4)

	// Marking a paid booking again conflicts
	_, err = fx.service.MarkManualPaid(context.Background(), booking.ID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCartItemsRoundTripThroughStoredBooking(t *testing.T) {
	fx := newFlowFixture()
	resp := fx.createBooking(t, 2)

	booking := fx.bookings.bookings[resp.ID]
	items, err := ParseCart(booking.Cart)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(10), items[0].TicketTypeID)
	assert.Equal(t, 2, items[0].Quantity)

	var stored []models.CartItem
	require.NoError(t, json.Unmarshal(booking.Cart, &stored))
	assert.Equal(t, items, stored)
}

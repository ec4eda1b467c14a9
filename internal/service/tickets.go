package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "alumhub/internal/errors"
	"alumhub/internal/logger"
	"alumhub/internal/messaging"
	"alumhub/internal/metrics"
	"alumhub/internal/models"
	"alumhub/internal/repository"
)

// ticketStore is the persistence surface the ticket service needs,
// satisfied by repository.TicketRepository.
type ticketStore interface {
	CountByBooking(ctx context.Context, bookingID int64) (int, error)
	MaterializeBooking(ctx context.Context, event *models.Event, bookingID int64, units []repository.TicketUnit, perType map[int64]int) ([]models.Ticket, error)
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]models.Ticket, error)
	CheckIn(ctx context.Context, id int64, at time.Time) (bool, error)
	MarkShirtPickedUp(ctx context.Context, id int64, at time.Time) (bool, error)
}

// TicketService expands paid bookings into individual ticket records.
type TicketService struct {
	ticketRepo ticketStore
	eventRepo  eventStore
	natsClient *messaging.NATSClient
}

func NewTicketService(ticketRepo ticketStore, eventRepo eventStore, natsClient *messaging.NATSClient) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		natsClient: natsClient,
	}
}

// ParseCart decodes a stored cart blob. Carts are stored as canonical JSON
// text, but tolerate the array arriving re-quoted as a JSON string, which
// some writers produce.
func ParseCart(raw []byte) ([]models.CartItem, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to unquote cart: %w", err)
		}
		data = []byte(s)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse cart: %w", err)
	}

	return items, nil
}

// ExpandUnits flattens a booking into one unit per ticket together with the
// per-type quantities. Cart entries win over manual fields; a booking with
// neither yields no units. Entries with a missing type or non-positive
// quantity are skipped.
func ExpandUnits(booking *models.Booking, items []models.CartItem) ([]repository.TicketUnit, map[int64]int) {
	var units []repository.TicketUnit
	perType := make(map[int64]int)

	if len(items) > 0 {
		for _, item := range items {
			if item.TicketTypeID == 0 || item.Quantity <= 0 {
				continue
			}
			perType[item.TicketTypeID] += item.Quantity
			for i := 0; i < item.Quantity; i++ {
				units = append(units, repository.TicketUnit{
					TicketTypeID: item.TicketTypeID,
					Options:      item.Options,
				})
			}
		}
		return units, perType
	}

	if booking.ManualTicketType != nil && booking.ManualTicketCount != nil && *booking.ManualTicketCount > 0 {
		typeID := *booking.ManualTicketType
		count := *booking.ManualTicketCount
		perType[typeID] = count
		for i := 0; i < count; i++ {
			units = append(units, repository.TicketUnit{TicketTypeID: typeID})
		}
	}

	return units, perType
}

// Materialize creates the ticket records for a paid booking. Safe to call
// repeatedly: a booking that already has tickets is a no-op. The expansion
// itself is all-or-nothing.
func (s *TicketService) Materialize(ctx context.Context, booking *models.Booking) error {
	log := logger.WithContext(ctx).With("booking_code", booking.BookingCode)

	count, err := s.ticketRepo.CountByBooking(ctx, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to check existing tickets: %w", err)
	}
	if count > 0 {
		log.Info("Tickets already exist for booking, skipping generation", "count", count)
		return nil
	}

	items, err := ParseCart(booking.Cart)
	if err != nil {
		return fmt.Errorf("failed to parse booking cart: %w", err)
	}

	units, perType := ExpandUnits(booking, items)
	if len(units) == 0 {
		log.Warn("No units to materialize for booking")
		return nil
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return fmt.Errorf("event %d not found for booking %s", booking.EventID, booking.BookingCode)
	}

	tickets, err := s.ticketRepo.MaterializeBooking(ctx, event, booking.ID, units, perType)
	if err != nil {
		return fmt.Errorf("failed to materialize booking: %w", err)
	}

	log.Info("Generated tickets for booking", "ticket_count", len(tickets))
	metrics.TicketsGenerated.Add(float64(len(tickets)))

	generated := models.TicketsGeneratedEvent{
		BookingID:   booking.ID,
		BookingCode: booking.BookingCode,
		EventID:     booking.EventID,
		TicketCount: len(tickets),
		Timestamp:   time.Now(),
	}
	if err := s.natsClient.Publish(models.EventTicketsGenerated, generated); err != nil {
		log.Error("Failed to publish tickets generated event", "error", err)
	}

	return nil
}

// CheckIn marks a ticket as checked in, once.
func (s *TicketService) CheckIn(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	ok, err := s.ticketRepo.CheckIn(ctx, ticketID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to check in ticket: %w", err)
	}
	if !ok {
		ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if ticket == nil {
			return nil, fmt.Errorf("%w: ticket %d", apperrors.ErrNotFound, ticketID)
		}
		return nil, fmt.Errorf("%w: ticket %s already checked in", apperrors.ErrConflict, ticket.TicketCode)
	}
	return s.ticketRepo.GetByID(ctx, ticketID)
}

// MarkShirtPickedUp marks a ticket's shirt as picked up, once.
func (s *TicketService) MarkShirtPickedUp(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	ok, err := s.ticketRepo.MarkShirtPickedUp(ctx, ticketID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to mark shirt picked up: %w", err)
	}
	if !ok {
		ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		if ticket == nil {
			return nil, fmt.Errorf("%w: ticket %d", apperrors.ErrNotFound, ticketID)
		}
		return nil, fmt.Errorf("%w: shirt for ticket %s already picked up", apperrors.ErrConflict, ticket.TicketCode)
	}
	return s.ticketRepo.GetByID(ctx, ticketID)
}

// ListByBooking returns the tickets of a booking.
func (s *TicketService) ListByBooking(ctx context.Context, bookingID int64) ([]models.Ticket, error) {
	return s.ticketRepo.ListByBooking(ctx, bookingID)
}

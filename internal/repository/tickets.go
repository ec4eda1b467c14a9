package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"alumhub/internal/database"
	"alumhub/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// TicketUnit describes one ticket to be created during materialization.
type TicketUnit struct {
	TicketTypeID int64
	Options      []byte
}

// CountByBooking returns the number of tickets already created for a booking.
// Used as the materialization idempotency guard.
func (r *TicketRepository) CountByBooking(ctx context.Context, bookingID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_booking_tickets WHERE booking_id = $1`, bookingID).Scan(&count)
	return count, err
}

// MaterializeBooking expands a paid booking into individual tickets inside
// one transaction: per-type sold increments, a block reservation of the
// event's ticket sequence, and one insert per unit. A failure anywhere rolls
// back the whole expansion.
func (r *TicketRepository) MaterializeBooking(ctx context.Context, event *models.Event, bookingID int64, units []TicketUnit, perType map[int64]int) ([]models.Ticket, error) {
	if len(units) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Advance sold counters, one atomic increment per ticket type.
	for typeID, qty := range perType {
		res, err := tx.ExecContext(ctx, `
			UPDATE event_tickets
			SET sold = sold + $1, updated_at = NOW()
			WHERE id = $2 AND event_id = $3`, qty, typeID, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update sold count for ticket type %d: %w", typeID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("ticket type %d not found for event %d", typeID, event.ID)
		}
	}

	// Reserve the whole sequence block with a single write to the event row.
	var endSeq int
	err = tx.QueryRowContext(ctx, `
		UPDATE events
		SET last_ticket_seq = last_ticket_seq + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING last_ticket_seq`, len(units), event.ID).Scan(&endSeq)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve ticket sequence block: %w", err)
	}
	startSeq := endSeq - len(units) + 1

	tickets := make([]models.Ticket, 0, len(units))
	for i, unit := range units {
		ticket := models.Ticket{
			TicketCode:   event.FormatTicketCode(startSeq + i),
			BookingID:    bookingID,
			TicketTypeID: unit.TicketTypeID,
		}

		var options any
		if len(unit.Options) > 0 {
			options = string(unit.Options)
			ticket.SelectedOptions = unit.Options
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO event_booking_tickets (ticket_code, booking_id, ticket_type_id, selected_options)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`,
			ticket.TicketCode, ticket.BookingID, ticket.TicketTypeID, options,
		).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert ticket %s: %w", ticket.TicketCode, err)
		}

		tickets = append(tickets, ticket)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ticket materialization: %w", err)
	}

	return tickets, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM event_booking_tickets WHERE id = $1`, id)

	ticket, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ticket, err
}

func (r *TicketRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM event_booking_tickets
		 WHERE booking_id = $1
		 ORDER BY ticket_code`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}

	return tickets, rows.Err()
}

// CheckIn flips the check-in flag once. Returns false when the ticket is
// unknown or already checked in.
func (r *TicketRepository) CheckIn(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE event_booking_tickets
		SET checked_in = TRUE, checkin_time = $1, updated_at = NOW()
		WHERE id = $2 AND NOT checked_in`, at, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

// MarkShirtPickedUp flips the shirt-pickup flag once.
func (r *TicketRepository) MarkShirtPickedUp(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE event_booking_tickets
		SET shirt_picked_up = TRUE, shirt_pickup_time = $1, updated_at = NOW()
		WHERE id = $2 AND NOT shirt_picked_up`, at, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected > 0, err
}

const ticketColumns = `id, ticket_code, booking_id, ticket_type_id, selected_options,
       shirt_picked_up, shirt_pickup_time, checked_in, checkin_time, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	var options []byte
	err := row.Scan(
		&ticket.ID,
		&ticket.TicketCode,
		&ticket.BookingID,
		&ticket.TicketTypeID,
		&options,
		&ticket.ShirtPickedUp,
		&ticket.ShirtPickupTime,
		&ticket.CheckedIn,
		&ticket.CheckinTime,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ticket.SelectedOptions = options
	return ticket, nil
}

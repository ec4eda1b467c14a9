package repository

import (
	"context"
	"database/sql"
	"fmt"

	"alumhub/internal/database"
	"alumhub/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, code, title, event_date, COALESCE(event_time, ''), COALESCE(location, ''),
       COALESCE(description, ''), status, booking_code_format, ticket_code_format,
       last_booking_seq, last_ticket_seq, created_by, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID,
		&event.Code,
		&event.Title,
		&event.EventDate,
		&event.EventTime,
		&event.Location,
		&event.Description,
		&event.Status,
		&event.BookingCodeFormat,
		&event.TicketCodeFormat,
		&event.LastBookingSeq,
		&event.LastTicketSeq,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Create persists the event and its ticket types in one transaction.
func (r *EventRepository) Create(ctx context.Context, event *models.Event, ticketTypes []models.TicketType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (code, title, event_date, event_time, location, description,
		                    status, booking_code_format, ticket_code_format, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		event.Code,
		event.Title,
		event.EventDate,
		event.EventTime,
		event.Location,
		event.Description,
		event.Status,
		event.BookingCodeFormat,
		event.TicketCodeFormat,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range ticketTypes {
		tt := &ticketTypes[i]
		tt.EventID = event.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO event_tickets (event_id, name, price, quota)
			VALUES ($1, $2, $3, $4)
			RETURNING id, sold, created_at, updated_at`,
			tt.EventID, tt.Name, tt.Price, tt.Quota,
		).Scan(&tt.ID, &tt.Sold, &tt.CreatedAt, &tt.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

func (r *EventRepository) List(ctx context.Context, status string) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY event_date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	return events, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET title = $1, event_date = $2, event_time = $3, location = $4,
		    description = $5, status = $6, updated_at = NOW()
		WHERE id = $7`,
		event.Title, event.EventDate, event.EventTime, event.Location,
		event.Description, event.Status, event.ID)
	return err
}

// AllocateBookingSeq advances the event's booking sequence and returns the
// new value. Single atomic statement, safe under concurrent bookings.
func (r *EventRepository) AllocateBookingSeq(ctx context.Context, eventID int64) (int, error) {
	var seq int
	err := r.db.QueryRowContext(ctx, `
		UPDATE events
		SET last_booking_seq = last_booking_seq + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING last_booking_seq`, eventID).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("event %d not found", eventID)
	}
	return seq, err
}

func (r *EventRepository) GetTicketType(ctx context.Context, id int64) (*models.TicketType, error) {
	tt := &models.TicketType{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, name, price, quota, sold, created_at, updated_at
		FROM event_tickets
		WHERE id = $1`, id).Scan(
		&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quota, &tt.Sold,
		&tt.CreatedAt, &tt.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return tt, err
}

func (r *EventRepository) ListTicketTypes(ctx context.Context, eventID int64) ([]models.TicketType, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, name, price, quota, sold, created_at, updated_at
		FROM event_tickets
		WHERE event_id = $1
		ORDER BY price`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []models.TicketType
	for rows.Next() {
		var tt models.TicketType
		err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.Quota, &tt.Sold,
			&tt.CreatedAt, &tt.UpdatedAt)
		if err != nil {
			return nil, err
		}
		types = append(types, tt)
	}

	return types, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"alumhub/internal/database"
	"alumhub/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, booking_code, event_id, user_id, cart, subtotal, service_fee,
       total_price, payment_status, payment_method, payment_date,
       snap_token, snap_redirect_url, coordinator_name, coordinator_phone,
       manual_ticket_type, manual_ticket_count, is_deleted, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	booking := &models.Booking{}
	var cart []byte
	err := row.Scan(
		&booking.ID,
		&booking.BookingCode,
		&booking.EventID,
		&booking.UserID,
		&cart,
		&booking.Subtotal,
		&booking.ServiceFee,
		&booking.TotalPrice,
		&booking.PaymentStatus,
		&booking.PaymentMethod,
		&booking.PaymentDate,
		&booking.SnapToken,
		&booking.SnapRedirectURL,
		&booking.CoordinatorName,
		&booking.CoordinatorPhone,
		&booking.ManualTicketType,
		&booking.ManualTicketCount,
		&booking.IsDeleted,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Cart = cart
	return booking, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO event_bookings (booking_code, event_id, user_id, cart, subtotal,
		                            service_fee, total_price, payment_status, payment_method,
		                            coordinator_name, coordinator_phone,
		                            manual_ticket_type, manual_ticket_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	var cart any
	if len(booking.Cart) > 0 {
		cart = string(booking.Cart)
	}

	return r.db.QueryRowContext(ctx, query,
		booking.BookingCode,
		booking.EventID,
		booking.UserID,
		cart,
		booking.Subtotal,
		booking.ServiceFee,
		booking.TotalPrice,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.CoordinatorName,
		booking.CoordinatorPhone,
		booking.ManualTicketType,
		booking.ManualTicketCount,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM event_bookings WHERE id = $1 AND NOT is_deleted`, id)

	booking, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

// GetByCode retrieves a booking by its human-readable code. The gateway's
// order_id is the booking code, so the webhook handler resolves through here.
func (r *BookingRepository) GetByCode(ctx context.Context, code string) (*models.Booking, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM event_bookings WHERE booking_code = $1`, code)

	booking, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM event_bookings
		 WHERE user_id = $1 AND NOT is_deleted
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

// SetPaymentSession stores the gateway checkout session on a booking after
// its creation. Kept separate from Create so a failed gateway call leaves
// the pending booking intact.
func (r *BookingRepository) SetPaymentSession(ctx context.Context, id int64, token, redirectURL string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE event_bookings
		SET snap_token = $1, snap_redirect_url = $2, updated_at = NOW()
		WHERE id = $3`, token, redirectURL, id)
	return err
}

// MarkPaid persists the paid transition together with the payment method
// and timestamp. Only a pending booking transitions; reports false when a
// concurrent delivery already moved the booking, so exactly one caller
// runs the paid side effects.
func (r *BookingRepository) MarkPaid(ctx context.Context, id int64, method string, paidAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE event_bookings
		SET payment_status = $1, payment_method = $2, payment_date = $3, updated_at = NOW()
		WHERE id = $4 AND payment_status = $5`,
		models.PaymentStatusPaid, method, paidAt, id, models.PaymentStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *BookingRepository) MarkExpired(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE event_bookings
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2`, models.PaymentStatusExpired, id)
	return err
}

// SoftDelete flags a booking as removed without physical deletion.
func (r *BookingRepository) SoftDelete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE event_bookings
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1`, id)
	return err
}

// GetExpired returns pending bookings created before the cutoff, for the
// expiration sweep.
func (r *BookingRepository) GetExpired(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM event_bookings
		 WHERE payment_status = $1 AND NOT is_deleted AND created_at < $2
		 ORDER BY created_at ASC`, models.PaymentStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

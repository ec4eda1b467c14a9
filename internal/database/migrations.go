package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createRegistrationSequencesTable,
		createEventsTable,
		createEventTicketsTable,
		createEventBookingsTable,
		createEventBookingTicketsTable,
		createMidtransLogsTable,
		createNotificationsTable,
		createBookingIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    name VARCHAR(255) NOT NULL,
    phone VARCHAR(50),
    role VARCHAR(20) NOT NULL DEFAULT 'member',
    graduation_year INTEGER NOT NULL DEFAULT 0,
    reg_no_global INTEGER,
    reg_no_cohort INTEGER,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (role IN ('member', 'admin'))
);`

const createRegistrationSequencesTable = `
CREATE TABLE IF NOT EXISTS registration_sequences (
    id BIGSERIAL PRIMARY KEY,
    year INTEGER UNIQUE NOT NULL,
    last_number INTEGER NOT NULL DEFAULT 0,

    CHECK (year >= 0),
    CHECK (last_number >= 0)
);`

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    code VARCHAR(50) NOT NULL,
    title VARCHAR(500) NOT NULL,
    event_date DATE NOT NULL,
    event_time VARCHAR(50),
    location VARCHAR(500),
    description TEXT,
    status VARCHAR(20) NOT NULL DEFAULT 'draft',
    booking_code_format VARCHAR(100) NOT NULL DEFAULT '{CODE}-{YEAR}-{SEQ}',
    ticket_code_format VARCHAR(100) NOT NULL DEFAULT 'TIX-{CODE}-{SEQ}',
    last_booking_seq INTEGER NOT NULL DEFAULT 0,
    last_ticket_seq INTEGER NOT NULL DEFAULT 0,
    created_by BIGINT REFERENCES users(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('draft', 'active', 'completed'))
);`

const createEventTicketsTable = `
CREATE TABLE IF NOT EXISTS event_tickets (
    id BIGSERIAL PRIMARY KEY,
    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    price BIGINT NOT NULL DEFAULT 0,
    quota INTEGER NOT NULL DEFAULT 0,
    sold INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (price >= 0),
    CHECK (quota >= 0),
    CHECK (sold >= 0)
);`

const createEventBookingsTable = `
CREATE TABLE IF NOT EXISTS event_bookings (
    id BIGSERIAL PRIMARY KEY,
    booking_code VARCHAR(100) UNIQUE NOT NULL,
    event_id BIGINT NOT NULL REFERENCES events(id),
    user_id BIGINT REFERENCES users(id),
    cart JSONB,
    subtotal BIGINT NOT NULL DEFAULT 0,
    service_fee BIGINT NOT NULL DEFAULT 0,
    total_price BIGINT NOT NULL DEFAULT 0,
    payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    payment_method VARCHAR(50),
    payment_date TIMESTAMP,
    snap_token VARCHAR(255),
    snap_redirect_url TEXT,
    coordinator_name VARCHAR(255),
    coordinator_phone VARCHAR(50),
    manual_ticket_type BIGINT REFERENCES event_tickets(id),
    manual_ticket_count INTEGER,
    is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (payment_status IN ('pending', 'paid', 'expired', 'refunded'))
);`

const createEventBookingTicketsTable = `
CREATE TABLE IF NOT EXISTS event_booking_tickets (
    id BIGSERIAL PRIMARY KEY,
    ticket_code VARCHAR(100) UNIQUE NOT NULL,
    booking_id BIGINT NOT NULL REFERENCES event_bookings(id) ON DELETE CASCADE,
    ticket_type_id BIGINT NOT NULL REFERENCES event_tickets(id),
    selected_options JSONB,
    shirt_picked_up BOOLEAN NOT NULL DEFAULT FALSE,
    shirt_pickup_time TIMESTAMP,
    checked_in BOOLEAN NOT NULL DEFAULT FALSE,
    checkin_time TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createMidtransLogsTable = `
CREATE TABLE IF NOT EXISTS midtrans_logs (
    id BIGSERIAL PRIMARY KEY,
    order_id VARCHAR(100) NOT NULL,
    transaction_id VARCHAR(100),
    transaction_status VARCHAR(50),
    fraud_status VARCHAR(50),
    payment_type VARCHAR(50),
    gross_amount VARCHAR(50),
    status_code VARCHAR(10),
    raw_body JSONB NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title VARCHAR(255) NOT NULL,
    body TEXT,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createBookingIndexes = `
CREATE INDEX IF NOT EXISTS idx_bookings_event ON event_bookings (event_id);
CREATE INDEX IF NOT EXISTS idx_bookings_user ON event_bookings (user_id);
CREATE INDEX IF NOT EXISTS idx_bookings_status ON event_bookings (payment_status);
CREATE INDEX IF NOT EXISTS idx_booking_tickets_booking ON event_booking_tickets (booking_id);
CREATE INDEX IF NOT EXISTS idx_midtrans_logs_order ON midtrans_logs (order_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id);`

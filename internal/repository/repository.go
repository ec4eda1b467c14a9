package repository

import (
	"alumhub/internal/database"
)

type Repositories struct {
	Sequences *SequenceRepository
	Events    *EventRepository
	Bookings  *BookingRepository
	Tickets   *TicketRepository
	Users     *UserRepository
	Logs      *LogRepository
}

func NewRepositories(db *database.DB) *Repositories {
	seqs := NewSequenceRepository(db)

	return &Repositories{
		Sequences: seqs,
		Events:    NewEventRepository(db),
		Bookings:  NewBookingRepository(db),
		Tickets:   NewTicketRepository(db),
		Users:     NewUserRepository(db, seqs),
		Logs:      NewLogRepository(db),
	}
}

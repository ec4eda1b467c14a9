package service

import (
	"alumhub/internal/cache"
	"alumhub/internal/external"
	"alumhub/internal/messaging"
	"alumhub/internal/repository"
	"alumhub/internal/search"
)

// Services bundles the business layer for handler and consumer wiring.
type Services struct {
	Users         *UserService
	Events        *EventService
	Bookings      *BookingService
	Tickets       *TicketService
	Notifications *NotificationService
}

func NewServices(
	repos *repository.Repositories,
	midtransClient *external.MidtransClient,
	natsClient *messaging.NATSClient,
	valkeyCache *cache.ValkeyClient,
	searchClient *search.ElasticsearchClient,
) *Services {
	tickets := NewTicketService(repos.Tickets, repos.Events, natsClient)

	return &Services{
		Users:         NewUserService(repos.Users, valkeyCache, natsClient),
		Events:        NewEventService(repos.Events, valkeyCache, searchClient),
		Bookings:      NewBookingService(repos.Bookings, repos.Events, repos.Users, repos.Logs, tickets, midtransClient, natsClient),
		Tickets:       tickets,
		Notifications: NewNotificationService(repos.Logs),
	}
}

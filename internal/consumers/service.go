package consumers

import (
	"context"
	"log/slog"

	"alumhub/internal/config"
	"alumhub/internal/database"
	"alumhub/internal/external"
	"alumhub/internal/messaging"
	"alumhub/internal/models"
	"alumhub/internal/repository"
	"alumhub/internal/service"
)

// ConsumerService runs the NATS subscribers that react to domain events:
// writing notifications and re-running ticket materialization as the retry
// path for paid bookings.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	services *service.Services
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)

	// Consumers never create payment sessions, search or cache; wire only
	// what the handlers use.
	midtransClient := external.NewMidtransClient(cfg.Midtrans)
	services := service.NewServices(repos, midtransClient, natsClient, nil, nil)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		services: services,
		handlers: NewHandlers(services),
	}, nil
}

// Services exposes the business layer for the background jobs sharing this
// process.
func (cs *ConsumerService) Services() *service.Services {
	return cs.services
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers")

	if _, err := cs.nats.SubscribeQueue(models.EventBookingCreated, "consumers", cs.handlers.HandleBookingCreated); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventBookingExpired, "consumers", cs.handlers.HandleBookingExpired); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentCompleted, "consumers", cs.handlers.HandlePaymentCompleted); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventPaymentFailed, "consumers", cs.handlers.HandlePaymentFailed); err != nil {
		return err
	}
	if _, err := cs.nats.SubscribeQueue(models.EventUserRegistered, "consumers", cs.handlers.HandleUserRegistered); err != nil {
		return err
	}

	slog.Info("All consumers started")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"alumhub/cmd/consumers/jobs"
	"alumhub/internal/config"
	"alumhub/internal/consumers"
	"alumhub/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	cfg.NATS.ClientID = "alumhub-consumers"

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	expirationJob := jobs.NewBookingExpirationJob(
		consumerService.Services().Bookings, cfg.BookingTTL)
	expirationJob.Start(context.Background())

	log.Info("Consumers service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service")

	expirationJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}

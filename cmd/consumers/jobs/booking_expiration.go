package jobs

import (
	"context"
	"log/slog"
	"time"

	"alumhub/internal/service"
)

const checkInterval = time.Minute

// BookingExpirationJob sweeps pending bookings that outlived the payment
// window and marks them expired.
type BookingExpirationJob struct {
	bookings *service.BookingService
	ttl      time.Duration
	ticker   *time.Ticker
	done     chan bool
}

func NewBookingExpirationJob(bookings *service.BookingService, ttl time.Duration) *BookingExpirationJob {
	return &BookingExpirationJob{
		bookings: bookings,
		ttl:      ttl,
		done:     make(chan bool),
	}
}

// Start runs the sweep on a fixed interval, with an immediate first pass.
func (j *BookingExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting booking expiration job",
		"check_interval", checkInterval.String(), "ttl", j.ttl.String())

	j.ticker = time.NewTicker(checkInterval)

	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Booking expiration job stopped")
				return
			}
		}
	}()
}

func (j *BookingExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *BookingExpirationJob) sweep(ctx context.Context) {
	expired, err := j.bookings.ExpireStale(ctx, j.ttl)
	if err != nil {
		slog.Error("Failed to sweep expired bookings", "error", err)
		return
	}
	if expired > 0 {
		slog.Info("Expired stale bookings", "count", expired)
	}
}

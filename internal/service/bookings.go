package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "alumhub/internal/errors"
	"alumhub/internal/external"
	"alumhub/internal/logger"
	"alumhub/internal/messaging"
	"alumhub/internal/metrics"
	"alumhub/internal/models"
)

// bookingStore is the persistence surface the booking service needs,
// satisfied by repository.BookingRepository.
type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	GetByCode(ctx context.Context, code string) (*models.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error)
	SetPaymentSession(ctx context.Context, id int64, token, redirectURL string) error
	MarkPaid(ctx context.Context, id int64, method string, paidAt time.Time) (bool, error)
	MarkExpired(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
	GetExpired(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

// eventStore is satisfied by repository.EventRepository.
type eventStore interface {
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	GetTicketType(ctx context.Context, id int64) (*models.TicketType, error)
	AllocateBookingSeq(ctx context.Context, eventID int64) (int, error)
}

// userGetter is satisfied by repository.UserRepository.
type userGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// auditStore is satisfied by repository.LogRepository.
type auditStore interface {
	CreateMidtransLog(ctx context.Context, log *models.MidtransLog) error
}

type BookingService struct {
	bookingRepo    bookingStore
	eventRepo      eventStore
	userRepo       userGetter
	logRepo        auditStore
	ticketService  *TicketService
	midtransClient *external.MidtransClient
	natsClient     *messaging.NATSClient
}

func NewBookingService(bookingRepo bookingStore, eventRepo eventStore, userRepo userGetter, logRepo auditStore, ticketService *TicketService, midtransClient *external.MidtransClient, natsClient *messaging.NATSClient) *BookingService {
	return &BookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		logRepo:        logRepo,
		ticketService:  ticketService,
		midtransClient: midtransClient,
		natsClient:     natsClient,
	}
}

// Create validates and persists a cart-based booking, allocates its code
// from the event's own sequence, and requests a checkout session. A failed
// gateway call leaves the pending booking intact without a session.
func (s *BookingService) Create(ctx context.Context, userID int64, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if req.ServiceFee < 0 {
		return nil, fmt.Errorf("%w: service fee must not be negative", apperrors.ErrValidation)
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %d", apperrors.ErrNotFound, req.EventID)
	}
	if event.Status != "active" {
		return nil, fmt.Errorf("%w: event %s is not open for booking", apperrors.ErrValidation, event.Code)
	}

	var subtotal int64
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
		}
		tt, err := s.eventRepo.GetTicketType(ctx, item.TicketTypeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get ticket type: %w", err)
		}
		if tt == nil || tt.EventID != event.ID {
			return nil, fmt.Errorf("%w: ticket type %d does not belong to event %s",
				apperrors.ErrValidation, item.TicketTypeID, event.Code)
		}
		// Courtesy check only: sold counters move at materialization, so a
		// race here oversells by at most in-flight bookings.
		if tt.Quota > 0 && tt.Sold+item.Quantity > tt.Quota {
			return nil, fmt.Errorf("%w: ticket type %s is sold out", apperrors.ErrConflict, tt.Name)
		}
		subtotal += tt.Price * int64(item.Quantity)
	}
	total := subtotal + req.ServiceFee

	cart, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}

	booking := &models.Booking{
		EventID:       event.ID,
		UserID:        &userID,
		Cart:          cart,
		Subtotal:      subtotal,
		ServiceFee:    req.ServiceFee,
		TotalPrice:    total,
		PaymentStatus: models.PaymentStatusPending,
	}

	if err := s.allocateAndPersist(ctx, event, booking); err != nil {
		return nil, err
	}

	resp := &models.CreateBookingResponse{
		ID:            booking.ID,
		BookingCode:   booking.BookingCode,
		TotalPrice:    booking.TotalPrice,
		PaymentStatus: booking.PaymentStatus,
	}

	// Payment session is best-effort: the sequence number is already spent
	// and the booking saved, so a gateway failure only means no session.
	if total > 0 && s.midtransClient != nil && s.midtransClient.Enabled() {
		s.requestPaymentSession(ctx, booking)
		resp.SnapToken = booking.SnapToken
		resp.SnapRedirectURL = booking.SnapRedirectURL
	}

	s.publishBookingCreated(ctx, booking)

	return resp, nil
}

// CreateManual persists a staff-entered cash/transfer booking for a flat
// ticket count. No gateway session is requested; an admin marks it paid.
func (s *BookingService) CreateManual(ctx context.Context, adminID int64, req *models.CreateManualBookingRequest) (*models.CreateBookingResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %d", apperrors.ErrNotFound, req.EventID)
	}

	tt, err := s.eventRepo.GetTicketType(ctx, req.TicketTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}
	if tt == nil || tt.EventID != event.ID {
		return nil, fmt.Errorf("%w: ticket type %d does not belong to event %s",
			apperrors.ErrValidation, req.TicketTypeID, event.Code)
	}

	subtotal := tt.Price * int64(req.TicketCount)
	booking := &models.Booking{
		EventID:           event.ID,
		UserID:            &adminID,
		Subtotal:          subtotal,
		TotalPrice:        subtotal,
		PaymentStatus:     models.PaymentStatusPending,
		PaymentMethod:     &req.PaymentMethod,
		CoordinatorName:   &req.CoordinatorName,
		CoordinatorPhone:  &req.CoordinatorPhone,
		ManualTicketType:  &req.TicketTypeID,
		ManualTicketCount: &req.TicketCount,
	}

	if err := s.allocateAndPersist(ctx, event, booking); err != nil {
		return nil, err
	}

	s.publishBookingCreated(ctx, booking)

	return &models.CreateBookingResponse{
		ID:            booking.ID,
		BookingCode:   booking.BookingCode,
		TotalPrice:    booking.TotalPrice,
		PaymentStatus: booking.PaymentStatus,
	}, nil
}

// allocateAndPersist draws the next booking sequence from the event and
// saves the booking under its formatted code. The counter advances even if
// a later step fails; gaps are accepted.
func (s *BookingService) allocateAndPersist(ctx context.Context, event *models.Event, booking *models.Booking) error {
	seq, err := s.eventRepo.AllocateBookingSeq(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to allocate booking sequence: %w", err)
	}

	booking.BookingCode = event.FormatBookingCode(time.Now().Year(), seq)

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	metrics.BookingsCreated.Inc()

	return nil
}

func (s *BookingService) requestPaymentSession(ctx context.Context, booking *models.Booking) {
	log := logger.WithContext(ctx).With("booking_code", booking.BookingCode)

	var customer *external.Customer
	if booking.UserID != nil {
		user, err := s.userRepo.GetByID(ctx, *booking.UserID)
		if err != nil {
			log.Warn("Failed to load user for payment session, sending minimal data", "error", err)
		} else if user != nil {
			customer = &external.Customer{Name: user.Name, Email: user.Email, Phone: user.Phone}
		}
	}

	session, err := s.midtransClient.CreateTransaction(ctx, booking.BookingCode, booking.TotalPrice, customer)
	if err != nil {
		log.Warn("Payment session request failed, booking saved without session", "error", err)
		return
	}

	if err := s.bookingRepo.SetPaymentSession(ctx, booking.ID, session.Token, session.RedirectURL); err != nil {
		log.Error("Failed to store payment session", "error", err)
		return
	}

	booking.SnapToken = &session.Token
	booking.SnapRedirectURL = &session.RedirectURL
}

func (s *BookingService) publishBookingCreated(ctx context.Context, booking *models.Booking) {
	event := models.BookingCreatedEvent{
		BookingID:   booking.ID,
		BookingCode: booking.BookingCode,
		EventID:     booking.EventID,
		UserID:      booking.UserID,
		TotalPrice:  booking.TotalPrice,
		Timestamp:   time.Now(),
	}
	if err := s.natsClient.Publish(models.EventBookingCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err, "booking_code", booking.BookingCode)
	}
}

func (s *BookingService) List(ctx context.Context, userID int64) ([]models.Booking, error) {
	return s.bookingRepo.GetByUserID(ctx, userID)
}

// Get returns a booking visible to the caller: its owner or an admin.
func (s *BookingService) Get(ctx context.Context, userID int64, isAdmin bool, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, id)
	}
	if !isAdmin && (booking.UserID == nil || *booking.UserID != userID) {
		return nil, apperrors.ErrForbidden
	}
	return booking, nil
}

// Cancel soft-deletes an unpaid booking. Paid bookings are immutable here;
// refunds are a manual process.
func (s *BookingService) Cancel(ctx context.Context, userID int64, isAdmin bool, id int64) error {
	booking, err := s.Get(ctx, userID, isAdmin, id)
	if err != nil {
		return err
	}
	if booking.PaymentStatus != models.PaymentStatusPending {
		return fmt.Errorf("%w: only pending bookings can be cancelled", apperrors.ErrConflict)
	}

	if err := s.bookingRepo.SoftDelete(ctx, booking.ID); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	return nil
}

// MarkManualPaid records an offline payment for a staff-entered booking and
// runs the paid transition, materializing its tickets.
func (s *BookingService) MarkManualPaid(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", apperrors.ErrNotFound, id)
	}
	if booking.IsTerminal() {
		return nil, fmt.Errorf("%w: booking %s is already %s", apperrors.ErrConflict,
			booking.BookingCode, booking.PaymentStatus)
	}
	if booking.ManualTicketType == nil {
		return nil, fmt.Errorf("%w: booking %s is not a manual booking", apperrors.ErrValidation,
			booking.BookingCode)
	}

	method := "cash"
	if booking.PaymentMethod != nil {
		method = *booking.PaymentMethod
	}

	if err := s.transitionToPaid(ctx, booking, method); err != nil {
		return nil, err
	}

	return booking, nil
}

// nextPaymentStatus maps the gateway's status vocabulary onto the booking's
// payment state. Unknown statuses leave the state unchanged.
func nextPaymentStatus(current, transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		switch fraudStatus {
		case "accept":
			return models.PaymentStatusPaid
		case "challenge":
			// Await the manual fraud decision
			return models.PaymentStatusPending
		}
		return current
	case "settlement":
		return models.PaymentStatusPaid
	case "pending":
		return models.PaymentStatusPending
	case "cancel", "deny", "expire":
		return models.PaymentStatusExpired
	}
	return current
}

// HandlePaymentNotification processes one webhook delivery from the
// gateway. Deliveries are at-least-once and may arrive out of order; a
// booking in a terminal state ignores any further notification.
func (s *BookingService) HandlePaymentNotification(ctx context.Context, notification *models.MidtransNotification, rawBody []byte) error {
	log := logger.WithContext(ctx).With("order_id", notification.OrderID)

	// Audit first, unconditionally. Audit failure never blocks the status
	// update.
	auditLog := &models.MidtransLog{
		OrderID:           notification.OrderID,
		TransactionID:     notification.TransactionID,
		TransactionStatus: notification.TransactionStatus,
		FraudStatus:       notification.FraudStatus,
		PaymentType:       notification.PaymentType,
		GrossAmount:       notification.GrossAmount,
		StatusCode:        notification.StatusCode,
		RawBody:           rawBody,
	}
	if err := s.logRepo.CreateMidtransLog(ctx, auditLog); err != nil {
		log.Error("Failed to save webhook audit log", "error", err)
	}

	booking, err := s.bookingRepo.GetByCode(ctx, notification.OrderID)
	if err != nil {
		return fmt.Errorf("failed to look up booking: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("%w: booking %s", apperrors.ErrNotFound, notification.OrderID)
	}

	if booking.IsTerminal() {
		log.Info("Booking already in terminal state, ignoring notification",
			"status", booking.PaymentStatus)
		return nil
	}

	newStatus := nextPaymentStatus(booking.PaymentStatus, notification.TransactionStatus, notification.FraudStatus)
	if newStatus == booking.PaymentStatus {
		log.Info("No status change for notification",
			"transaction_status", notification.TransactionStatus)
		return nil
	}

	switch newStatus {
	case models.PaymentStatusPaid:
		log.Info("Updating booking to paid", "payment_type", notification.PaymentType)
		if err := s.transitionToPaid(ctx, booking, notification.PaymentType); err != nil {
			return err
		}

	case models.PaymentStatusExpired:
		log.Info("Updating booking to expired",
			"transaction_status", notification.TransactionStatus)
		if err := s.bookingRepo.MarkExpired(ctx, booking.ID); err != nil {
			return fmt.Errorf("failed to mark booking expired: %w", err)
		}
		booking.PaymentStatus = models.PaymentStatusExpired
		metrics.BookingsExpired.Inc()

		failed := models.PaymentFailedEvent{
			BookingID:   booking.ID,
			BookingCode: booking.BookingCode,
			EventID:     booking.EventID,
			UserID:      booking.UserID,
			Reason:      notification.TransactionStatus,
			Timestamp:   time.Now(),
		}
		if err := s.natsClient.Publish(models.EventPaymentFailed, failed); err != nil {
			log.Error("Failed to publish payment failed event", "error", err)
		}
	}

	return nil
}

// transitionToPaid persists the paid state and runs the transition's side
// effects: ticket materialization and the payment.completed event. A failed
// materialization is logged, not returned; the consumers re-run it from the
// published event, and the existing-tickets guard keeps the retry safe.
func (s *BookingService) transitionToPaid(ctx context.Context, booking *models.Booking, method string) error {
	paidAt := time.Now()
	updated, err := s.bookingRepo.MarkPaid(ctx, booking.ID, method, paidAt)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if !updated {
		// A concurrent delivery won the transition and runs the side effects
		logger.WithContext(ctx).Info("Booking no longer pending, skipping paid transition",
			"booking_code", booking.BookingCode)
		return nil
	}
	booking.PaymentStatus = models.PaymentStatusPaid
	booking.PaymentMethod = &method
	booking.PaymentDate = &paidAt
	metrics.PaymentsCompleted.Inc()

	if err := s.ticketService.Materialize(ctx, booking); err != nil {
		logger.WithContext(ctx).Error("Ticket materialization failed",
			"error", err, "booking_code", booking.BookingCode)
	}

	completed := models.PaymentCompletedEvent{
		BookingID:     booking.ID,
		BookingCode:   booking.BookingCode,
		EventID:       booking.EventID,
		UserID:        booking.UserID,
		PaymentMethod: method,
		TotalPrice:    booking.TotalPrice,
		Timestamp:     paidAt,
	}
	if err := s.natsClient.Publish(models.EventPaymentCompleted, completed); err != nil {
		logger.WithContext(ctx).Error("Failed to publish payment completed event",
			"error", err, "booking_code", booking.BookingCode)
	}

	return nil
}

// ExpireStale marks pending bookings older than the TTL as expired.
// Returns the number of bookings expired. Used by the background sweep.
func (s *BookingService) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	stale, err := s.bookingRepo.GetExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to get stale bookings: %w", err)
	}

	expired := 0
	for i := range stale {
		booking := &stale[i]
		if err := s.bookingRepo.MarkExpired(ctx, booking.ID); err != nil {
			logger.WithContext(ctx).Error("Failed to expire booking",
				"error", err, "booking_code", booking.BookingCode)
			continue
		}
		expired++
		metrics.BookingsExpired.Inc()

		event := models.BookingExpiredEvent{
			BookingID:   booking.ID,
			BookingCode: booking.BookingCode,
			EventID:     booking.EventID,
			UserID:      booking.UserID,
			Reason:      fmt.Sprintf("pending for more than %s", ttl),
			Timestamp:   time.Now(),
		}
		if err := s.natsClient.Publish(models.EventBookingExpired, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish booking expired event",
				"error", err, "booking_code", booking.BookingCode)
		}
	}

	return expired, nil
}

// MaterializeByCode re-runs ticket materialization for a paid booking.
// Consumers call this from payment.completed deliveries as the retry path
// for a materialization that failed inside the webhook request.
func (s *BookingService) MaterializeByCode(ctx context.Context, bookingCode string) error {
	booking, err := s.bookingRepo.GetByCode(ctx, bookingCode)
	if err != nil {
		return fmt.Errorf("failed to look up booking: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("%w: booking %s", apperrors.ErrNotFound, bookingCode)
	}
	if booking.PaymentStatus != models.PaymentStatusPaid {
		return nil
	}
	return s.ticketService.Materialize(ctx, booking)
}

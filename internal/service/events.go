package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"alumhub/internal/cache"
	apperrors "alumhub/internal/errors"
	"alumhub/internal/logger"
	"alumhub/internal/models"
	"alumhub/internal/repository"
	"alumhub/internal/search"
)

const searchResultLimit = 50

type EventService struct {
	eventRepo    *repository.EventRepository
	valkeyCache  *cache.ValkeyClient
	searchClient *search.ElasticsearchClient
}

func NewEventService(eventRepo *repository.EventRepository, valkeyCache *cache.ValkeyClient, searchClient *search.ElasticsearchClient) *EventService {
	return &EventService{eventRepo: eventRepo, valkeyCache: valkeyCache, searchClient: searchClient}
}

// Create persists an event with its ticket types, indexes it for search and
// drops the cached list. Indexing is best-effort; the database row is the
// source of truth.
func (s *EventService) Create(ctx context.Context, createdBy int64, req *models.CreateEventRequest) (*models.Event, error) {
	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: event_date must be YYYY-MM-DD", apperrors.ErrValidation)
	}

	status := req.Status
	if status == "" {
		status = "active"
	}
	bookingFormat := req.BookingCodeFormat
	if bookingFormat == "" {
		bookingFormat = models.DefaultBookingCodeFormat
	}
	ticketFormat := req.TicketCodeFormat
	if ticketFormat == "" {
		ticketFormat = models.DefaultTicketCodeFormat
	}

	event := &models.Event{
		Code:              req.Code,
		Title:             req.Title,
		EventDate:         eventDate,
		EventTime:         req.EventTime,
		Location:          req.Location,
		Description:       req.Description,
		Status:            status,
		BookingCodeFormat: bookingFormat,
		TicketCodeFormat:  ticketFormat,
		CreatedBy:         &createdBy,
	}

	ticketTypes := make([]models.TicketType, len(req.TicketTypes))
	for i, tt := range req.TicketTypes {
		ticketTypes[i] = models.TicketType{Name: tt.Name, Price: tt.Price, Quota: tt.Quota}
	}

	if err := s.eventRepo.Create(ctx, event, ticketTypes); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if s.searchClient != nil {
		if err := s.searchClient.IndexEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("Failed to index event for search",
				"error", err, "event_code", event.Code)
		}
	}
	if s.valkeyCache != nil {
		s.valkeyCache.InvalidateEventsList(ctx)
	}

	return event, nil
}

// Update edits an event's mutable fields. Code and the code formats are
// fixed after creation; issued booking and ticket codes must stay valid.
func (s *EventService) Update(ctx context.Context, id int64, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, fmt.Errorf("%w: event %d", apperrors.ErrNotFound, id)
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.EventDate != "" {
		eventDate, err := time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			return nil, fmt.Errorf("%w: event_date must be YYYY-MM-DD", apperrors.ErrValidation)
		}
		event.EventDate = eventDate
	}
	if req.EventTime != "" {
		event.EventTime = req.EventTime
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.Status != "" {
		event.Status = req.Status
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if s.searchClient != nil {
		if err := s.searchClient.IndexEvent(ctx, event); err != nil {
			logger.WithContext(ctx).Warn("Failed to reindex event for search",
				"error", err, "event_code", event.Code)
		}
	}
	if s.valkeyCache != nil {
		s.valkeyCache.InvalidateEventsList(ctx)
	}

	return event, nil
}

// List returns events, optionally filtered by status or full-text query.
// The unfiltered list is served from cache when possible; text queries go
// through the search index and fall back to the database list on error.
func (s *EventService) List(ctx context.Context, status, query string) ([]models.Event, error) {
	if query != "" {
		return s.searchEvents(ctx, query)
	}

	cacheable := status == "" && s.valkeyCache != nil
	if cacheable {
		if raw, err := s.valkeyCache.GetEventsListRaw(ctx); err == nil {
			var events []models.Event
			if err := json.Unmarshal(raw, &events); err == nil {
				return events, nil
			}
		}
	}

	events, err := s.eventRepo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if cacheable {
		s.valkeyCache.SetEventsList(ctx, events)
	}

	return events, nil
}

func (s *EventService) searchEvents(ctx context.Context, query string) ([]models.Event, error) {
	if s.searchClient != nil {
		events, err := s.searchClient.Search(ctx, query, searchResultLimit)
		if err == nil {
			return events, nil
		}
		logger.WithContext(ctx).Warn("Search query failed, falling back to database list",
			"error", err, "query", query)
	}
	return s.eventRepo.List(ctx, "")
}

// Get returns an event with its ticket types.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, []models.TicketType, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, nil, fmt.Errorf("%w: event %d", apperrors.ErrNotFound, id)
	}

	ticketTypes, err := s.eventRepo.ListTicketTypes(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ticket types: %w", err)
	}

	return event, ticketTypes, nil
}

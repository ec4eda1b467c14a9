package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "alumhub/internal/errors"
	"alumhub/internal/logger"
	"alumhub/internal/middleware"
	"alumhub/internal/models"
	"alumhub/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// respondError maps sentinel errors onto HTTP status codes, hiding internal
// detail on unexpected failures.
func respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	default:
		logger.WithContext(c.Request.Context()).Error("Failed to "+action, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// Events handlers

// CreateEvent - POST /api/events (admin)
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	event, err := h.services.Events.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "create event")
		return
	}

	c.JSON(http.StatusCreated, event)
}

// UpdateEvent - PATCH /api/events/:id (admin)
// Empty fields are left unchanged; code and code formats are immutable
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "update event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// ListEvents - GET /api/events?status=&query=
func (h *Handlers) ListEvents(c *gin.Context) {
	events, err := h.services.Events.List(c.Request.Context(), c.Query("status"), c.Query("query"))
	if err != nil {
		respondError(c, err, "list events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, ticketTypes, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event, "ticket_types": ticketTypes})
}

func isAdmin(c *gin.Context) bool {
	user := middleware.CurrentUser(c)
	return user != nil && user.Role == "admin"
}

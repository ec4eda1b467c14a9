package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alumhub/internal/middleware"
	"alumhub/internal/models"
)

// Bookings handlers

// CreateBooking - POST /api/bookings
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Bookings.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "create booking")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// CreateManualBooking - POST /api/bookings/manual (admin)
// Staff-entered cash/transfer bookings for group coordinators
func (h *Handlers) CreateManualBooking(c *gin.Context) {
	var req models.CreateManualBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	response, err := h.services.Bookings.CreateManual(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "create manual booking")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListBookings - GET /api/bookings
// Returns the caller's own bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.services.Bookings.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "list bookings")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	booking, err := h.services.Bookings.Get(c.Request.Context(), userID, isAdmin(c), id)
	if err != nil {
		respondError(c, err, "get booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookingTickets - GET /api/bookings/:id/tickets
func (h *Handlers) ListBookingTickets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	// Access check reuses the booking lookup
	if _, err := h.services.Bookings.Get(c.Request.Context(), userID, isAdmin(c), id); err != nil {
		respondError(c, err, "get booking")
		return
	}

	tickets, err := h.services.Tickets.ListByBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "list tickets")
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}

	c.JSON(http.StatusOK, tickets)
}

// CancelBooking - DELETE /api/bookings/:id
// Soft delete; only pending bookings can be cancelled
func (h *Handlers) CancelBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(c)
	if err := h.services.Bookings.Cancel(c.Request.Context(), userID, isAdmin(c), id); err != nil {
		respondError(c, err, "cancel booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// MarkBookingPaid - PATCH /api/bookings/:id/paid (admin)
// Records an offline payment for a manual booking
func (h *Handlers) MarkBookingPaid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.services.Bookings.MarkManualPaid(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "mark booking paid")
		return
	}

	c.JSON(http.StatusOK, booking)
}

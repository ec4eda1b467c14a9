package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Tickets handlers: on-site operations, admin only

// CheckInTicket - PATCH /api/tickets/:id/checkin (admin)
// One-time gate check-in; a second attempt conflicts
func (h *Handlers) CheckInTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.CheckIn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "check in ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// PickUpShirt - PATCH /api/tickets/:id/shirt (admin)
func (h *Handlers) PickUpShirt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.MarkShirtPickedUp(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "record shirt pickup")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

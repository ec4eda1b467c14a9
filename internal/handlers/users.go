package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alumhub/internal/middleware"
	"alumhub/internal/models"
)

// Users handlers

// Register - POST /api/users/register
// Open endpoint; assigns the global and cohort registration numbers
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "register user")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Me - GET /api/users/me
func (h *Handlers) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.services.Users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListNotifications - GET /api/users/me/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notifications, err := h.services.Notifications.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "list notifications")
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	c.JSON(http.StatusOK, notifications)
}

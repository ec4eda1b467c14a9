package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "alumhub/internal/errors"
	"alumhub/internal/logger"
	"alumhub/internal/models"
)

// Payments handlers

// MidtransNotification - POST /api/payments/midtrans/notification
// Gateway webhook. Must answer 200 for every successfully processed
// delivery, including repeats, or the gateway keeps retrying.
func (h *Handlers) MidtransNotification(c *gin.Context) {
	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	var notification models.MidtransNotification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification payload"})
		return
	}
	if notification.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	err = h.services.Bookings.HandlePaymentNotification(c.Request.Context(), &notification, rawBody)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown order_id"})
			return
		}
		logger.WithContext(c.Request.Context()).Error("Failed to process payment notification",
			"error", err, "order_id", notification.OrderID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

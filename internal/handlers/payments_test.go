package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupPaymentsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// Invalid payloads are rejected before any service is touched
	h := NewHandlers(nil)
	r.POST("/api/payments/midtrans/notification", h.MidtransNotification)

	return r
}

func postNotification(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/api/payments/midtrans/notification",
		bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMidtransNotificationInvalidJSON(t *testing.T) {
	r := setupPaymentsRouter()

	w := postNotification(r, `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid notification payload")
}

func TestMidtransNotificationMissingOrderID(t *testing.T) {
	r := setupPaymentsRouter()

	w := postNotification(r, `{"transaction_status":"settlement"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "order_id is required")
}

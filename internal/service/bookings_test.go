package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"alumhub/internal/models"
)

func TestNextPaymentStatus(t *testing.T) {
	tests := []struct {
		name              string
		current           string
		transactionStatus string
		fraudStatus       string
		expected          string
	}{
		{
			name:              "capture accepted",
			current:           models.PaymentStatusPending,
			transactionStatus: "capture",
			fraudStatus:       "accept",
			expected:          models.PaymentStatusPaid,
		},
		{
			name:              "capture challenged stays pending",
			current:           models.PaymentStatusPending,
			transactionStatus: "capture",
			fraudStatus:       "challenge",
			expected:          models.PaymentStatusPending,
		},
		{
			name:              "capture with unknown fraud status is a no-op",
			current:           models.PaymentStatusPending,
			transactionStatus: "capture",
			fraudStatus:       "deny",
			expected:          models.PaymentStatusPending,
		},
		{
			name:              "settlement",
			current:           models.PaymentStatusPending,
			transactionStatus: "settlement",
			expected:          models.PaymentStatusPaid,
		},
		{
			name:              "pending",
			current:           models.PaymentStatusPending,
			transactionStatus: "pending",
			expected:          models.PaymentStatusPending,
		},
		{
			name:              "cancel",
			current:           models.PaymentStatusPending,
			transactionStatus: "cancel",
			expected:          models.PaymentStatusExpired,
		},
		{
			name:              "deny",
			current:           models.PaymentStatusPending,
			transactionStatus: "deny",
			expected:          models.PaymentStatusExpired,
		},
		{
			name:              "expire",
			current:           models.PaymentStatusPending,
			transactionStatus: "expire",
			expected:          models.PaymentStatusExpired,
		},
		{
			name:              "unknown status is a no-op",
			current:           models.PaymentStatusPending,
			transactionStatus: "refund",
			expected:          models.PaymentStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextPaymentStatus(tt.current, tt.transactionStatus, tt.fraudStatus)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBookingIsTerminal(t *testing.T) {
	assert.False(t, (&models.Booking{PaymentStatus: models.PaymentStatusPending}).IsTerminal())
	assert.True(t, (&models.Booking{PaymentStatus: models.PaymentStatusPaid}).IsTerminal())
	assert.True(t, (&models.Booking{PaymentStatus: models.PaymentStatusExpired}).IsTerminal())
	assert.True(t, (&models.Booking{PaymentStatus: models.PaymentStatusRefunded}).IsTerminal())
}

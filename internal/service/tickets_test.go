package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumhub/internal/models"
)

func TestParseCart(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []models.CartItem
		wantErr  bool
	}{
		{
			name: "plain array",
			raw:  `[{"ticket_type_id":1,"quantity":2},{"ticket_type_id":3,"quantity":1}]`,
			expected: []models.CartItem{
				{TicketTypeID: 1, Quantity: 2},
				{TicketTypeID: 3, Quantity: 1},
			},
		},
		{
			name: "array re-quoted as JSON string",
			raw:  `"[{\"ticket_type_id\":1,\"quantity\":2}]"`,
			expected: []models.CartItem{
				{TicketTypeID: 1, Quantity: 2},
			},
		},
		{
			name: "item with options",
			raw:  `[{"ticket_type_id":5,"quantity":1,"options":{"shirt_size":"L"}}]`,
			expected: []models.CartItem{
				{TicketTypeID: 5, Quantity: 1, Options: json.RawMessage(`{"shirt_size":"L"}`)},
			},
		},
		{
			name:     "empty input",
			raw:      "",
			expected: nil,
		},
		{
			name:     "null",
			raw:      "null",
			expected: nil,
		},
		{
			name:    "not an array",
			raw:     `{"ticket_type_id":1}`,
			wantErr: true,
		},
		{
			name:    "quoted garbage",
			raw:     `"not json"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseCart([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, items)
		})
	}
}

func TestExpandUnitsFromCart(t *testing.T) {
	booking := &models.Booking{ID: 10}
	items := []models.CartItem{
		{TicketTypeID: 1, Quantity: 2, Options: json.RawMessage(`{"shirt_size":"M"}`)},
		{TicketTypeID: 2, Quantity: 1},
	}

	units, perType := ExpandUnits(booking, items)

	require.Len(t, units, 3)
	assert.Equal(t, int64(1), units[0].TicketTypeID)
	assert.Equal(t, int64(1), units[1].TicketTypeID)
	assert.Equal(t, int64(2), units[2].TicketTypeID)
	assert.JSONEq(t, `{"shirt_size":"M"}`, string(units[0].Options))
	assert.Empty(t, units[2].Options)

	assert.Equal(t, map[int64]int{1: 2, 2: 1}, perType)
}

func TestExpandUnitsSkipsInvalidItems(t *testing.T) {
	booking := &models.Booking{}
	items := []models.CartItem{
		{TicketTypeID: 0, Quantity: 2},
		{TicketTypeID: 4, Quantity: 0},
		{TicketTypeID: 4, Quantity: -1},
		{TicketTypeID: 7, Quantity: 1},
	}

	units, perType := ExpandUnits(booking, items)

	require.Len(t, units, 1)
	assert.Equal(t, int64(7), units[0].TicketTypeID)
	assert.Equal(t, map[int64]int{7: 1}, perType)
}

func TestExpandUnitsManualBooking(t *testing.T) {
	typeID := int64(3)
	count := 5
	booking := &models.Booking{
		ManualTicketType:  &typeID,
		ManualTicketCount: &count,
	}

	units, perType := ExpandUnits(booking, nil)

	require.Len(t, units, 5)
	for _, u := range units {
		assert.Equal(t, typeID, u.TicketTypeID)
	}
	assert.Equal(t, map[int64]int{3: 5}, perType)
}

func TestExpandUnitsCartWinsOverManual(t *testing.T) {
	typeID := int64(3)
	count := 5
	booking := &models.Booking{
		ManualTicketType:  &typeID,
		ManualTicketCount: &count,
	}
	items := []models.CartItem{{TicketTypeID: 9, Quantity: 1}}

	units, perType := ExpandUnits(booking, items)

	require.Len(t, units, 1)
	assert.Equal(t, int64(9), units[0].TicketTypeID)
	assert.Equal(t, map[int64]int{9: 1}, perType)
}

func TestExpandUnitsEmptyBooking(t *testing.T) {
	units, perType := ExpandUnits(&models.Booking{}, nil)

	assert.Empty(t, units)
	assert.Empty(t, perType)
}

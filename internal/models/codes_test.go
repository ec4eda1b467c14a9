package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBookingCode(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		year     int
		seq      int
		expected string
	}{
		{
			name:     "default format",
			event:    Event{Code: "REUNI26"},
			year:     2026,
			seq:      4,
			expected: "REUNI26-2026-0004",
		},
		{
			name:     "sequence padding past four digits",
			event:    Event{Code: "REUNI26"},
			year:     2026,
			seq:      12345,
			expected: "REUNI26-2026-12345",
		},
		{
			name:     "custom format without year",
			event:    Event{Code: "GALA", BookingCodeFormat: "{CODE}/{SEQ}"},
			year:     2026,
			seq:      7,
			expected: "GALA/0007",
		},
		{
			name:     "explicit default format",
			event:    Event{Code: "HOMECOMING", BookingCodeFormat: "{CODE}-{YEAR}-{SEQ}"},
			year:     2027,
			seq:      1,
			expected: "HOMECOMING-2027-0001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.FormatBookingCode(tt.year, tt.seq))
		})
	}
}

func TestFormatTicketCode(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		seq      int
		expected string
	}{
		{
			name:     "default format",
			event:    Event{Code: "REUNI26"},
			seq:      1,
			expected: "TIX-REUNI26-0001",
		},
		{
			name:     "custom format",
			event:    Event{Code: "GALA", TicketCodeFormat: "{CODE}#{SEQ}"},
			seq:      42,
			expected: "GALA#0042",
		},
		{
			name: "literal YEAR placeholder stays untouched",
			event: Event{
				Code:             "REUNI26",
				TicketCodeFormat: "TIX-{YEAR}-{SEQ}",
			},
			seq:      3,
			expected: "TIX-{YEAR}-0003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.FormatTicketCode(tt.seq))
		})
	}
}

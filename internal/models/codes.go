package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Default code templates, used when an event does not configure its own.
const (
	DefaultBookingCodeFormat = "{CODE}-{YEAR}-{SEQ}"
	DefaultTicketCodeFormat  = "TIX-{CODE}-{SEQ}"
)

// formatCode substitutes {CODE}, {YEAR} and the zero-padded {SEQ} into a
// code template.
func formatCode(format, eventCode string, year, seq int) string {
	s := strings.ReplaceAll(format, "{CODE}", eventCode)
	s = strings.ReplaceAll(s, "{YEAR}", strconv.Itoa(year))
	return strings.ReplaceAll(s, "{SEQ}", fmt.Sprintf("%04d", seq))
}

// FormatBookingCode builds the human-readable booking code for a sequence
// number, e.g. REUNI26-2026-0004.
func (e *Event) FormatBookingCode(year, seq int) string {
	format := e.BookingCodeFormat
	if format == "" {
		format = DefaultBookingCodeFormat
	}
	return formatCode(format, e.Code, year, seq)
}

// FormatTicketCode builds the ticket code for a sequence number,
// e.g. TIX-REUNI26-0001. Ticket templates only carry {CODE} and {SEQ}.
func (e *Event) FormatTicketCode(seq int) string {
	format := e.TicketCodeFormat
	if format == "" {
		format = DefaultTicketCodeFormat
	}
	s := strings.ReplaceAll(format, "{CODE}", e.Code)
	return strings.ReplaceAll(s, "{SEQ}", fmt.Sprintf("%04d", seq))
}

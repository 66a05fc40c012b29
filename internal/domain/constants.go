package domain

import "time"

// Default scheduling values
const (
	DefaultWorkStartHour     = 9
	DefaultWorkEndHour       = 17
	DefaultSlotLengthMinutes = 60
)

// Service descriptor limits
const (
	MinPriceInCents      = 500
	MinDeliveryTimeValue = 1
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MinDescriptionLength = 20
	MaxDescriptionLength = 1000
	MaxNotesLength       = 2000
)

// Booking flow thresholds
const (
	// MinProjectRequirementsLength is the hard gate on trimmed requirements text
	MinProjectRequirementsLength = 20
	// GoodDetailWords is the soft "good detail" hint, never a gate
	GoodDetailWords = 50
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
	TimeFormat = "15:04"      // HH:MM
)

// ActiveStatuses statuses that occupy the professional's calendar.
// Используется при проверке пересечений и вето на удаление.
var ActiveStatuses = []BookingStatus{
	StatusPendingConfirmation,
	StatusConfirmed,
}

// TerminalStatuses statuses that accept no further transitions
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusDeclined,
}

// StatusStrings converts statuses to plain strings for SQL arguments
func StatusStrings(statuses []BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// StartOfDay returns midnight of t's calendar day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

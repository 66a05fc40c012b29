package scheduling

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// GenerateDaySlots yields contiguous slots covering [StartHour:00, EndHour:00)
// of day's calendar date in day's location. Every slot starts available.
// A trailing remainder shorter than SlotLength is not emitted.
// The sequence is empty when StartHour >= EndHour or SlotLength <= 0.
func GenerateDaySlots(day time.Time, hours domain.WorkingHours) iter.Seq[domain.TimeSlot] {
	return func(yield func(domain.TimeSlot) bool) {
		if hours.StartHour >= hours.EndHour || hours.SlotLength <= 0 {
			return
		}

		y, m, d := day.Date()
		loc := day.Location()
		windowStart := time.Date(y, m, d, hours.StartHour, 0, 0, 0, loc)
		windowEnd := time.Date(y, m, d, hours.EndHour, 0, 0, 0, loc)

		for start := windowStart; !start.Add(hours.SlotLength).After(windowEnd); start = start.Add(hours.SlotLength) {
			slot := domain.TimeSlot{Start: start, End: start.Add(hours.SlotLength), Available: true}
			if !yield(slot) {
				return
			}
		}
	}
}

// IsSlotStart reports whether t is the start of a slot generated for its own day
func IsSlotStart(t time.Time, hours domain.WorkingHours) bool {
	for slot := range GenerateDaySlots(t, hours) {
		if slot.Start.Equal(t) {
			return true
		}
		if slot.Start.After(t) {
			return false
		}
	}
	return false
}

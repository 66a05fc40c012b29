package scheduling

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Overlaps is the half-open interval test: [aStart, aEnd) and [bStart, bEnd) overlap
// iff aStart < bEnd && aEnd > bStart. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ResolveAvailability marks a slot unavailable when an active booking overlaps it.
// Bookings without an end are a zero-length instant at their start.
// Output keeps input order. Neither input is modified.
func ResolveAvailability(slots iter.Seq[domain.TimeSlot], bookings []*domain.Booking) []domain.TimeSlot {
	active := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b != nil && b.IsActive() {
			active = append(active, b)
		}
	}

	resolved := make([]domain.TimeSlot, 0)
	for slot := range slots {
		slot.Available = slot.Available && !conflicts(slot.Start, slot.End, active)
		resolved = append(resolved, slot)
	}
	return resolved
}

// FindConflict returns the first active booking overlapping [start, end), or nil
func FindConflict(start, end time.Time, bookings []*domain.Booking) *domain.Booking {
	for _, b := range bookings {
		if b == nil || !b.IsActive() {
			continue
		}
		bStart, bEnd := b.Interval()
		if Overlaps(start, end, bStart, bEnd) {
			return b
		}
	}
	return nil
}

func conflicts(start, end time.Time, active []*domain.Booking) bool {
	return FindConflict(start, end, active) != nil
}

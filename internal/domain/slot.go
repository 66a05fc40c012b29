package domain

import "time"

// TimeSlot is a candidate booking interval [Start, End). Computed per query, never stored.
type TimeSlot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// WorkingHours is the daily window slots are cut from
type WorkingHours struct {
	StartHour  int
	EndHour    int
	SlotLength time.Duration
}

// DefaultWorkingHours 09:00-17:00 in one-hour slots
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		StartHour:  DefaultWorkStartHour,
		EndHour:    DefaultWorkEndHour,
		SlotLength: DefaultSlotLengthMinutes * time.Minute,
	}
}

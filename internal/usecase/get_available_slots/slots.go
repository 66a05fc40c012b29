package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// dayWindow возвращает границы календарного дня [начало, начало следующего дня)
func dayWindow(date time.Time) (time.Time, time.Time) {
	from := domain.StartOfDay(date)
	return from, from.AddDate(0, 0, 1)
}

// toSlots конвертирует доменные слоты в ответ.
// Слоты, которые уже начались к моменту now, недоступны.
func toSlots(resolved []domain.TimeSlot, now time.Time) []Slot {
	result := make([]Slot, len(resolved))

	for i, slot := range resolved {
		result[i] = Slot{
			Start:     slot.Start,
			End:       slot.End,
			Available: slot.Available && slot.Start.After(now),
		}
	}

	return result
}

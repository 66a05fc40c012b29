package get_available_slots

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date           string          `json:"date"`
	ProfessionalID uuid.UUID       `json:"professionalId"`
	ServiceID      uuid.UUID       `json:"serviceId"`
	Slots          []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	StartTime string    `json:"startTime"` // HH:MM для отображения
	Available bool      `json:"available"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			Start:     slot.Start,
			End:       slot.End,
			StartTime: slot.Start.Format(domain.TimeFormat),
			Available: slot.Available,
		}
	}

	return &AvailableSlotsResponse{
		Date:           resp.Date.Format(domain.DateFormat),
		ProfessionalID: resp.ProfessionalID,
		ServiceID:      resp.ServiceID,
		Slots:          slots,
	}
}

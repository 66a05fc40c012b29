package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	Actor     domain.Actor // Клиент, от имени которого создается бронирование
	ServiceID uuid.UUID

	BookingDateTime *time.Time // Начало слота, только для TIME_BASED

	ProjectRequirements string // Обязательно для PROJECT_BASED (не короче 20 символов)
	SpecialRequests     string
	ClientNotes         string

	PaymentToken string // Токен карты для авторизации платежа

	// Повтор запроса с тем же ключом возвращает уже созданное бронирование
	// без новой авторизации платежа. Сессия бронирования передает свой FlowID.
	IdempotencyKey *uuid.UUID
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                uuid.UUID
	ClientID          uuid.UUID
	ProfessionalID    uuid.UUID
	ServiceID         uuid.UUID
	BookingStartTime  time.Time
	BookingEndTime    *time.Time
	Status            string
	AmountPaidInCents int64 // Цена услуги на момент создания
	Notes             *string
	PaymentReference  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:                b.ID,
		ClientID:          b.ClientID,
		ProfessionalID:    b.ProfessionalID,
		ServiceID:         b.ServiceID,
		BookingStartTime:  b.BookingStartTime,
		BookingEndTime:    b.BookingEndTime,
		Status:            string(b.Status),
		AmountPaidInCents: b.AmountPaidInCents,
		Notes:             b.Notes,
		PaymentReference:  b.PaymentReference,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

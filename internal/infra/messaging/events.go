package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Ключи маршрутизации
const (
	RoutingKeyBookingCreated       = "booking.created"
	RoutingKeyBookingStatusChanged = "booking.status_changed"
)

// BookingCreatedEvent публикуется после фиксации нового бронирования
type BookingCreatedEvent struct {
	BookingID         uuid.UUID            `json:"bookingId"`
	ClientID          uuid.UUID            `json:"clientId"`
	ProfessionalID    uuid.UUID            `json:"professionalId"`
	ServiceID         uuid.UUID            `json:"serviceId"`
	Status            domain.BookingStatus `json:"status"`
	BookingStartTime  time.Time            `json:"bookingStartTime"`
	BookingEndTime    *time.Time           `json:"bookingEndTime,omitempty"`
	AmountPaidInCents int64                `json:"amountPaidInCents"`
	OccurredAt        time.Time            `json:"occurredAt"`
}

// BookingStatusChangedEvent публикуется после принятого перехода статуса
type BookingStatusChangedEvent struct {
	BookingID      uuid.UUID            `json:"bookingId"`
	ClientID       uuid.UUID            `json:"clientId"`
	ProfessionalID uuid.UUID            `json:"professionalId"`
	From           domain.BookingStatus `json:"from"`
	To             domain.BookingStatus `json:"to"`
	ActorID        uuid.UUID            `json:"actorId"`
	ActorRole      domain.Role          `json:"actorRole"`
	OccurredAt     time.Time            `json:"occurredAt"`
}

func NewBookingCreatedEvent(b *domain.Booking, at time.Time) BookingCreatedEvent {
	return BookingCreatedEvent{
		BookingID:         b.ID,
		ClientID:          b.ClientID,
		ProfessionalID:    b.ProfessionalID,
		ServiceID:         b.ServiceID,
		Status:            b.Status,
		BookingStartTime:  b.BookingStartTime,
		BookingEndTime:    b.BookingEndTime,
		AmountPaidInCents: b.AmountPaidInCents,
		OccurredAt:        at,
	}
}

func NewBookingStatusChangedEvent(b *domain.Booking, from domain.BookingStatus, actor domain.Actor, at time.Time) BookingStatusChangedEvent {
	return BookingStatusChangedEvent{
		BookingID:      b.ID,
		ClientID:       b.ClientID,
		ProfessionalID: b.ProfessionalID,
		From:           from,
		To:             b.Status,
		ActorID:        actor.ID,
		ActorRole:      actor.Role,
		OccurredAt:     at,
	}
}

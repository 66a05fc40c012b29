package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

// Request модели

// GetUserBookingsRequest бронирования, где актор клиент или специалист
type GetUserBookingsRequest struct {
	Actor  domain.Actor
	Status *string
}

// TransitionRequest запрос на смену статуса бронирования
type TransitionRequest struct {
	Actor     domain.Actor
	BookingID uuid.UUID
	Status    string
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                uuid.UUID  `json:"id"`
	ClientID          uuid.UUID  `json:"clientId"`
	ProfessionalID    uuid.UUID  `json:"professionalId"`
	ServiceID         uuid.UUID  `json:"serviceId"`
	BookingStartTime  time.Time  `json:"bookingStartTime"`
	BookingEndTime    *time.Time `json:"bookingEndTime,omitempty"`
	Status            string     `json:"status"`
	AmountPaidInCents int64      `json:"amountPaidInCents"`
	Notes             *string    `json:"notes,omitempty"`
	PaymentReference  *string    `json:"paymentReference,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
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

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

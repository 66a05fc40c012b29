package create_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	createBooking "github.com/m04kA/SMC-MarketplaceBooking/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID           uuid.UUID  `json:"serviceId" validate:"required"`
	BookingDateTime     *time.Time `json:"bookingDateTime,omitempty"` // RFC3339, только для TIME_BASED
	ProjectRequirements string     `json:"projectRequirements,omitempty"`
	SpecialRequests     string     `json:"specialRequests,omitempty" validate:"max=2000"`
	ClientNotes         string     `json:"clientNotes,omitempty" validate:"max=2000"`
	PaymentToken        string     `json:"paymentToken" validate:"required"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(actor domain.Actor) *createBooking.Request {
	return &createBooking.Request{
		Actor:               actor,
		ServiceID:           r.ServiceID,
		BookingDateTime:     r.BookingDateTime,
		ProjectRequirements: r.ProjectRequirements,
		SpecialRequests:     r.SpecialRequests,
		ClientNotes:         r.ClientNotes,
		PaymentToken:        r.PaymentToken,
	}
}

// BookingResponse HTTP response model
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

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                resp.ID,
		ClientID:          resp.ClientID,
		ProfessionalID:    resp.ProfessionalID,
		ServiceID:         resp.ServiceID,
		BookingStartTime:  resp.BookingStartTime,
		BookingEndTime:    resp.BookingEndTime,
		Status:            resp.Status,
		AmountPaidInCents: resp.AmountPaidInCents,
		Notes:             resp.Notes,
		PaymentReference:  resp.PaymentReference,
		CreatedAt:         resp.CreatedAt,
		UpdatedAt:         resp.UpdatedAt,
	}
}
